package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaga(t *testing.T) {
	t.Run("undoes newest first and keeps going after a failure", func(t *testing.T) {
		var order []int
		step := func(n int, err error) *WriteResult {
			return &WriteResult{Compensate: func(context.Context) error {
				order = append(order, n)
				return err
			}}
		}
		boom := errors.New("restore failed")

		var s Saga
		s.Track(step(1, nil))
		s.Track(&WriteResult{})
		s.Track(nil)
		s.Track(step(2, boom))
		s.Track(step(3, nil))
		require.Equal(t, 3, s.Len())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := s.Compensate(ctx)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []int{3, 2, 1}, order)
		assert.Zero(t, s.Len())
	})

	t.Run("nothing tracked", func(t *testing.T) {
		var s Saga
		assert.NoError(t, s.Compensate(context.Background()))
	})
}
