package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/querylog"
	"vcbot/pkg/logger"
)

// echoTool returns its arguments back.
type echoTool struct {
	name string
	err  error
}

func (t *echoTool) Spec() ToolSpec {
	return ToolSpec{Name: t.name, Description: "echo", Params: []Param{
		{Name: "value", Type: "string", Required: true},
	}}
}

func (t *echoTool) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	if t.err != nil {
		return nil, t.err
	}
	return map[string]any{"echo": args["value"]}, nil
}

func newTestService(t *testing.T, model Model, logStore querylog.Store) *Service {
	t.Helper()
	reg := NewRegistry()
	reg.Register(&echoTool{name: "echo"})
	if logStore == nil {
		logStore = &querylog.MockStore{}
	}
	return NewService(model, reg, logStore, logger.Default())
}

func TestAskReturnsModelText(t *testing.T) {
	model := &MockModel{
		GenerateFunc: func(_ context.Context, system, prompt string, tools []ToolSpec, _ ToolExecutor) (Reply, error) {
			assert.NotEmpty(t, system)
			assert.Equal(t, "what is HR 1?", prompt)
			require.Len(t, tools, 1)
			assert.Equal(t, "echo", tools[0].Name)
			return Reply{Text: "HR 1 is the first House bill."}, nil
		},
	}

	var logged querylog.Entry
	logStore := &querylog.MockStore{
		AppendFunc: func(_ context.Context, entry querylog.Entry) error {
			logged = entry
			return nil
		},
	}

	svc := newTestService(t, model, logStore)
	resp, err := svc.Ask(context.Background(), Request{UserID: "u1", UserName: "alice", Query: "what is HR 1?"})
	require.NoError(t, err)

	assert.Equal(t, "HR 1 is the first House bill.", resp.Text)
	assert.False(t, resp.Truncated)
	assert.Equal(t, "u1", logged.UserID)
	assert.Equal(t, resp.Text, logged.Response)
}

func TestAskExecutesTools(t *testing.T) {
	model := &MockModel{
		GenerateFunc: func(ctx context.Context, _, _ string, _ []ToolSpec, exec ToolExecutor) (Reply, error) {
			out, err := exec(ctx, "echo", map[string]any{"value": "hi"})
			if err != nil {
				return Reply{}, err
			}
			return Reply{Text: out["echo"].(string), ToolCalls: []string{"echo"}}, nil
		},
	}

	svc := newTestService(t, model, nil)
	resp, err := svc.Ask(context.Background(), Request{UserID: "u1", Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Text)
	assert.Equal(t, []string{"echo"}, resp.ToolCalls)
}

func TestAskUnknownToolFails(t *testing.T) {
	model := &MockModel{
		GenerateFunc: func(ctx context.Context, _, _ string, _ []ToolSpec, exec ToolExecutor) (Reply, error) {
			_, err := exec(ctx, "nope", nil)
			return Reply{}, err
		},
	}

	svc := newTestService(t, model, nil)
	_, err := svc.Ask(context.Background(), Request{UserID: "u1", Query: "q"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeToolExecution))
}

func TestAskTruncatesLongResponses(t *testing.T) {
	model := &MockModel{
		GenerateFunc: func(_ context.Context, _, _ string, _ []ToolSpec, _ ToolExecutor) (Reply, error) {
			return Reply{Text: strings.Repeat("a", MaxResponseLength+500)}, nil
		},
	}

	svc := newTestService(t, model, nil)
	resp, err := svc.Ask(context.Background(), Request{UserID: "u1", Query: "q"})
	require.NoError(t, err)
	assert.True(t, resp.Truncated)
	assert.Len(t, []rune(resp.Text), MaxResponseLength)
	assert.True(t, strings.HasSuffix(resp.Text, "…"))
}

func TestAskEmptyQuery(t *testing.T) {
	svc := newTestService(t, &MockModel{}, nil)
	_, err := svc.Ask(context.Background(), Request{UserID: "u1", Query: "  "})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestAskSurvivesQueryLogFailure(t *testing.T) {
	model := &MockModel{
		GenerateFunc: func(_ context.Context, _, _ string, _ []ToolSpec, _ ToolExecutor) (Reply, error) {
			return Reply{Text: "fine"}, nil
		},
	}
	logStore := &querylog.MockStore{
		AppendFunc: func(_ context.Context, _ querylog.Entry) error {
			return errors.New("disk full")
		},
	}

	svc := newTestService(t, model, logStore)
	resp, err := svc.Ask(context.Background(), Request{UserID: "u1", Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "fine", resp.Text)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&echoTool{name: "b"})
	reg.Register(&echoTool{name: "a"})

	specs := reg.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, "a", specs[0].Name)
	assert.Equal(t, "b", specs[1].Name)

	_, err := reg.Get("missing")
	assert.Error(t, err)
}
