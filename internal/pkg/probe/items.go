package probe

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
)

const KeyAlive = "mongo.alive"

// Item maps a serverStatus field to a Zabbix item key.
type Item struct {
	Path []string
	Key  string
}

// Metric is one value ready to be relayed.
type Metric struct {
	Key   string
	Value string
}

// ServerStatusItems lists the values relayed for every reachable mongod,
// in the order they are sent.
var ServerStatusItems = []Item{
	{Path: []string{"connections", "current"}, Key: "mongo.conn.current"},
	{Path: []string{"connections", "available"}, Key: "mongo.conn.available"},
	{Path: []string{"mem", "resident"}, Key: "mongo.mem.resident"},
	{Path: []string{"network", "bytesIn"}, Key: "mongo.network.in"},
	{Path: []string{"network", "bytesOut"}, Key: "mongo.network.out"},
	{Path: []string{"opcounters", "delete"}, Key: "mongo.op.delete"},
	{Path: []string{"opcounters", "getmore"}, Key: "mongo.op.getmore"},
	{Path: []string{"opcounters", "insert"}, Key: "mongo.op.insert"},
	{Path: []string{"opcounters", "query"}, Key: "mongo.op.query"},
	{Path: []string{"opcounters", "update"}, Key: "mongo.op.update"},
	{Path: []string{"extra_info", "page_faults"}, Key: "mongo.page_faults"},
	{Path: []string{"uptime"}, Key: "mongo.uptime"},
	{Path: []string{"version"}, Key: "mongo.version"},
}

// Extract reads every item from a serverStatus document. Missing fields are
// skipped and reported in the returned error, present ones are still returned.
func Extract(status bson.M, items []Item) ([]Metric, error) {
	var errs error
	metrics := make([]Metric, 0, len(items))
	for _, item := range items {
		value, found := Lookup(status, item.Path)
		if !found {
			errs = multierr.Append(errs, fmt.Errorf("field %s not found in serverStatus", strings.Join(item.Path, ".")))
			continue
		}
		metrics = append(metrics, Metric{Key: item.Key, Value: FormatValue(value)})
	}
	return metrics, errs
}

// Lookup walks a document along path.
func Lookup(doc interface{}, path []string) (interface{}, bool) {
	current := doc
	for _, key := range path {
		switch d := current.(type) {
		case bson.M:
			v, found := d[key]
			if !found {
				return nil, false
			}
			current = v
		case map[string]interface{}:
			v, found := d[key]
			if !found {
				return nil, false
			}
			current = v
		case bson.D:
			v, found := lookupD(d, key)
			if !found {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}

func lookupD(d bson.D, key string) (interface{}, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// FormatValue renders a BSON value the way the monitoring items expect it:
// integers in decimal, doubles always with a fractional part.
func FormatValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case int64:
		return strconv.FormatInt(value, 10)
	case int:
		return strconv.Itoa(value)
	case float64:
		s := strconv.FormatFloat(value, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case bool:
		if value {
			return "True"
		}
		return "False"
	case primitive.Decimal128:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}
