package readygate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceFunc(t *testing.T) {
	var svc Service[string, int] = ServiceFunc[string, int](func(ctx context.Context, req string) (int, error) {
		return len(req), nil
	})
	r, err := svc.PollReady(NoopWaker)
	require.NoError(t, err)
	assert.Equal(t, Ready, r)

	val, err := svc.Call(context.Background(), "four").Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, val)
}

func TestStack(t *testing.T) {
	var order []string
	layer := func(name string) Layer[string, string] {
		return func(inner Service[string, string]) Service[string, string] {
			return ServiceFunc[string, string](func(ctx context.Context, req string) (string, error) {
				order = append(order, name)
				return Oneshot(ctx, inner, req+name)
			})
		}
	}
	inner := ServiceFunc[string, string](func(ctx context.Context, req string) (string, error) {
		order = append(order, "inner")
		return req, nil
	})
	svc := Stack[string, string](inner, layer("a"), layer("b"))

	resp, err := Oneshot(context.Background(), svc, "")
	require.NoError(t, err)
	assert.Equal(t, "ab", resp)
	assert.Equal(t, []string{"a", "b", "inner"}, order)
}
