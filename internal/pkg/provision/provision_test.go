package provision

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/metrics"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/zabbix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mock.Mock
}

func (f *fakeAPI) Login(ctx context.Context, user string, password string) (string, error) {
	args := f.Called(ctx, user, password)
	return args.String(0), args.Error(1)
}

func (f *fakeAPI) ImportConfiguration(ctx context.Context, token string, format string, source string) error {
	args := f.Called(ctx, token, format, source)
	return args.Error(0)
}

func (f *fakeAPI) GetTemplateID(ctx context.Context, token string, name string) (zabbix.ID, error) {
	args := f.Called(ctx, token, name)
	return args.Get(0).(zabbix.ID), args.Error(1)
}

func (f *fakeAPI) EnsureHostGroup(ctx context.Context, token string, name string) (zabbix.ID, error) {
	args := f.Called(ctx, token, name)
	return args.Get(0).(zabbix.ID), args.Error(1)
}

func (f *fakeAPI) CreateHost(ctx context.Context, token string, spec zabbix.HostSpec) (zabbix.ID, error) {
	args := f.Called(ctx, token, spec)
	return args.Get(0).(zabbix.ID), args.Error(1)
}

const token = "0424bd59b807674191e7d77572075f33"

func templateFile(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "mongo_standalone.xml")
	require.NoError(t, os.WriteFile(path, []byte("<zabbix_export/>"), 0o644))
	return path
}

func options(t *testing.T) Options {
	return Options{
		User:         "Admin",
		Password:     "zabbix",
		TemplateFile: templateFile(t),
		TemplateName: "Template DB MongoDB",
		Group:        "Mongodb Standalone",
		Hosts:        []HostTarget{{Name: "mongo_server", IP: "10.0.0.1"}},
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.On("Login", ctx, "Admin", "zabbix").Return(token, nil).Once()
	api.On("ImportConfiguration", ctx, token, "xml", "<zabbix_export/>").Return(nil).Once()
	api.On("GetTemplateID", ctx, token, "Template DB MongoDB").Return(zabbix.ID("10001"), nil).Once()
	api.On("EnsureHostGroup", ctx, token, "Mongodb Standalone").Return(zabbix.ID("15"), nil).Once()
	api.On("CreateHost", ctx, token, zabbix.HostSpec{
		Name:       "mongo_server",
		IP:         "10.0.0.1",
		GroupId:    "15",
		TemplateId: "10001",
	}).Return(zabbix.ID("10105"), nil).Once()

	report, err := Run(ctx, api, options(t))
	require.NoError(t, err)
	api.AssertExpectations(t)

	assert.True(t, report.Passed())
	assert.Equal(t, []zabbix.ID{"10105"}, report.HostIDs())

	var names []string
	for _, s := range report.Steps {
		names = append(names, s.Name)
		assert.Equal(t, StatusOK, s.Status)
	}
	assert.Equal(t, []string{StepAuthenticate, StepImportTemplate, StepResolveTemplate, StepResolveGroup, StepCreateHost}, names)
}

func TestRun_AuthenticationFailure(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.On("Login", ctx, "Admin", "wrong").
		Return("", &zabbix.APIError{Code: -32602, Message: "Invalid params.", Data: "Login name or password is incorrect."}).Once()

	opts := options(t)
	opts.Password = "wrong"
	report, err := Run(ctx, api, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)

	var apiErr *zabbix.APIError
	assert.True(t, errors.As(err, &apiErr))

	api.AssertExpectations(t)
	api.AssertNotCalled(t, "ImportConfiguration", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "GetTemplateID", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "EnsureHostGroup", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "CreateHost", mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, report.Passed())
}

func TestRun_ImportFailureTolerated(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.On("Login", ctx, "Admin", "zabbix").Return(token, nil)
	api.On("ImportConfiguration", ctx, token, "xml", mock.Anything).Return(zabbix.ErrImportRejected)
	api.On("GetTemplateID", ctx, token, "Template DB MongoDB").Return(zabbix.ID("10001"), nil)
	api.On("EnsureHostGroup", ctx, token, "Mongodb Standalone").Return(zabbix.ID("15"), nil)
	api.On("CreateHost", ctx, token, mock.AnythingOfType("zabbix.HostSpec")).Return(zabbix.ID("10105"), nil)

	report, err := Run(ctx, api, options(t))
	require.NoError(t, err)

	step, found := report.Step(StepImportTemplate)
	require.True(t, found)
	assert.Equal(t, StatusFailed, step.Status)
	assert.ErrorIs(t, step.Err, zabbix.ErrImportRejected)
	assert.True(t, report.Passed())
}

func TestRun_UnreadableTemplateFile(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.On("Login", ctx, "Admin", "zabbix").Return(token, nil)
	api.On("GetTemplateID", ctx, token, "Template DB MongoDB").Return(zabbix.ID(""), zabbix.ErrNotFound)
	api.On("EnsureHostGroup", ctx, token, "Mongodb Standalone").Return(zabbix.ID("15"), nil)

	opts := options(t)
	opts.TemplateFile = filepath.Join(t.TempDir(), "missing.xml")
	report, err := Run(ctx, api, opts)
	require.NoError(t, err)

	api.AssertNotCalled(t, "ImportConfiguration", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	step, _ := report.Step(StepImportTemplate)
	assert.Equal(t, StatusFailed, step.Status)
}

func TestRun_NoHostWithoutIDs(t *testing.T) {
	tests := []struct {
		name        string
		templateErr error
		groupErr    error
	}{
		{"template missing", zabbix.ErrNotFound, nil},
		{"group failed", nil, &zabbix.APIError{Code: -32500, Message: "Application error."}},
		{"both failed", zabbix.ErrNotFound, errors.New("connection refused")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx := context.Background()
			api := &fakeAPI{}
			api.On("Login", ctx, "Admin", "zabbix").Return(token, nil)
			api.On("ImportConfiguration", ctx, token, "xml", mock.Anything).Return(nil)
			api.On("GetTemplateID", ctx, token, "Template DB MongoDB").Return(zabbix.ID("10001"), test.templateErr)
			api.On("EnsureHostGroup", ctx, token, "Mongodb Standalone").Return(zabbix.ID("15"), test.groupErr)

			skipped := testutil.ToFloat64(metrics.ProvisionStepTotal.WithLabelValues(StepCreateHost, metrics.ResultSkipped))

			report, err := Run(ctx, api, options(t))
			require.NoError(t, err)
			assert.Equal(t, skipped+1, testutil.ToFloat64(metrics.ProvisionStepTotal.WithLabelValues(StepCreateHost, metrics.ResultSkipped)))

			// both lookups run even when the first one fails
			api.AssertCalled(t, "GetTemplateID", ctx, token, "Template DB MongoDB")
			api.AssertCalled(t, "EnsureHostGroup", ctx, token, "Mongodb Standalone")
			api.AssertNotCalled(t, "CreateHost", mock.Anything, mock.Anything, mock.Anything)

			step, found := report.Step(StepCreateHost)
			require.True(t, found)
			assert.Equal(t, StatusSkipped, step.Status)
			assert.ErrorIs(t, step.Err, ErrMissingIDs)
			assert.False(t, report.Passed())
		})
	}
}

func TestRun_SeveralHosts(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.On("Login", ctx, "Admin", "zabbix").Return(token, nil).Once()
	api.On("ImportConfiguration", ctx, token, "xml", mock.Anything).Return(nil).Once()
	api.On("GetTemplateID", ctx, token, "Template DB MongoDB").Return(zabbix.ID("10001"), nil).Once()
	api.On("EnsureHostGroup", ctx, token, "Mongodb Standalone").Return(zabbix.ID("15"), nil).Once()
	api.On("CreateHost", ctx, token, mock.MatchedBy(func(s zabbix.HostSpec) bool { return s.Name == "repl_10.0.0.1" })).
		Return(zabbix.ID(""), &zabbix.APIError{Code: -32602, Message: "Invalid params.", Data: "Host with the same name \"repl_10.0.0.1\" already exists."}).Once()
	api.On("CreateHost", ctx, token, mock.MatchedBy(func(s zabbix.HostSpec) bool { return s.Name == "repl_10.0.0.2" })).
		Return(zabbix.ID("10106"), nil).Once()

	opts := options(t)
	opts.Hosts = []HostTarget{
		{Name: "repl_10.0.0.1", IP: "10.0.0.1"},
		{Name: "repl_10.0.0.2", IP: "10.0.0.2"},
	}
	report, err := Run(ctx, api, opts)
	require.NoError(t, err)
	api.AssertExpectations(t)

	// the first failure does not stop the second host
	assert.Equal(t, []zabbix.ID{"10106"}, report.HostIDs())
	assert.False(t, report.Passed())
}

func TestRun_NoHost(t *testing.T) {
	api := &fakeAPI{}
	opts := options(t)
	opts.Hosts = nil

	_, err := Run(context.Background(), api, opts)
	assert.ErrorIs(t, err, ErrNoHost)
	api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestReport_Render(t *testing.T) {
	report := &Report{}
	report.add(Step{Name: StepAuthenticate, Target: "Admin", Status: StatusOK})
	report.add(Step{Name: StepResolveTemplate, Target: "Template DB MongoDB", Status: StatusFailed, Err: zabbix.ErrNotFound})

	var out bytes.Buffer
	report.Render(&out)

	rendered := out.String()
	assert.Contains(t, rendered, "STEP")
	assert.Contains(t, rendered, StepAuthenticate)
	assert.Contains(t, rendered, "Template DB MongoDB")
	assert.Contains(t, rendered, "not found")
	assert.Equal(t, rendered, report.String())
}
