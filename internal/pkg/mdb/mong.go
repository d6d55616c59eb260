package mdb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/multierr"
)

const (
	AdminDatabase       = "admin"
	CmdIsMaster         = "isMaster"
	CmdServerStatus     = "serverStatus"
	DefaultAuthSource   = "admin"
	DefaultSelectionTTL = 30 * time.Second
)

var (
	// The instance could not be reached at all
	ErrUnreachable = errors.New("could not connect to the server")
	// The instance answered but refused or failed the command
	ErrCommandFailed = errors.New("could not get the server status")
)

type Options struct {
	// host:port of the instance
	Address    string
	User       string
	Password   string
	AuthSource string
	// How long the driver waits for the instance to be selectable
	ServerSelectionTimeout time.Duration
}

func (o Options) hasCredentials() bool {
	return o.User != "" || o.Password != ""
}

type MDB struct {
	opts Options
	// Unauthenticated client, used for isMaster
	client *mongo.Client
	// Authenticated client, used for serverStatus when credentials are set
	authClient *mongo.Client
}

// NewMongo returns a new MDB struct. No connection is made until a command runs.
func NewMongo(opts Options) *MDB {
	if opts.AuthSource == "" {
		opts.AuthSource = DefaultAuthSource
	}
	if opts.ServerSelectionTimeout <= 0 {
		opts.ServerSelectionTimeout = DefaultSelectionTTL
	}
	return &MDB{
		opts: opts,
	}
}

func (mdb *MDB) Address() string {
	return mdb.opts.Address
}

func (mdb *MDB) Uri() string {
	return "mongodb://" + mdb.opts.Address
}

// Connect to the MongoDB instance only, never to the rest of its replica set
func (mdb *MDB) connect(ctx context.Context, withAuth bool) (*mongo.Client, error) {
	connectOpts := options.Client().
		ApplyURI(mdb.Uri()).
		SetDirect(true).
		SetServerSelectionTimeout(mdb.opts.ServerSelectionTimeout)

	if withAuth {
		connectOpts.SetAuth(options.Credential{
			AuthSource: mdb.opts.AuthSource,
			Username:   mdb.opts.User,
			Password:   mdb.opts.Password,
		})
	}
	return mongo.Connect(ctx, connectOpts)
}

func (mdb *MDB) getClient(ctx context.Context) (*mongo.Client, error) {
	if mdb.client != nil {
		return mdb.client, nil
	}
	client, err := mdb.connect(ctx, false)
	if err != nil {
		return nil, err
	}
	mdb.client = client
	return mdb.client, nil
}

func (mdb *MDB) getAuthClient(ctx context.Context) (*mongo.Client, error) {
	if !mdb.opts.hasCredentials() {
		return mdb.getClient(ctx)
	}
	if mdb.authClient != nil {
		return mdb.authClient, nil
	}
	client, err := mdb.connect(ctx, true)
	if err != nil {
		return nil, err
	}
	mdb.authClient = client
	return mdb.authClient, nil
}

// IsMaster runs isMaster without credentials. Any failure means the
// instance is unreachable.
func (mdb *MDB) IsMaster(ctx context.Context) error {
	client, err := mdb.getClient(ctx)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrUnreachable, mdb.opts.Address, err)
	}
	err = client.Database(AdminDatabase).RunCommand(ctx, bson.D{{Key: CmdIsMaster, Value: 1}}).Err()
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrUnreachable, mdb.opts.Address, err)
	}
	return nil
}

// ServerStatus runs serverStatus, authenticated when credentials are set.
func (mdb *MDB) ServerStatus(ctx context.Context) (bson.M, error) {
	client, err := mdb.getAuthClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrUnreachable, mdb.opts.Address, err)
	}

	var status bson.M
	err = client.Database(AdminDatabase).RunCommand(ctx, bson.D{{Key: CmdServerStatus, Value: 1}}).Decode(&status)
	if err != nil {
		if IsConnectivityError(err) {
			return nil, fmt.Errorf("%w %s: %w", ErrUnreachable, mdb.opts.Address, err)
		}
		return nil, fmt.Errorf("%w %s: %w", ErrCommandFailed, mdb.opts.Address, err)
	}
	return status, nil
}

// Ping checks the instance answers, without credentials.
func (mdb *MDB) Ping(ctx context.Context) error {
	client, err := mdb.getClient(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, nil)
}

// Disconnect closes the clients opened so far.
func (mdb *MDB) Disconnect(ctx context.Context) error {
	var err error
	if mdb.client != nil {
		err = multierr.Append(err, mdb.client.Disconnect(ctx))
		mdb.client = nil
	}
	if mdb.authClient != nil {
		err = multierr.Append(err, mdb.authClient.Disconnect(ctx))
		mdb.authClient = nil
	}
	if err != nil {
		log.Warn("error disconnecting from ", mdb.opts.Address, ": ", err)
	}
	return err
}

// IsConnectivityError tells network failures and timeouts apart from
// command and authorization failures. A net.Error anywhere in the chain
// counts as connectivity, which covers pool checkouts failing after a
// successful heartbeat.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
