package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackPushPopOrder(t *testing.T) {
	s := NewStack(4)
	require.NoError(t, s.Push(0, NumberValue(1)))
	require.NoError(t, s.Push(0, NumberValue(2)))

	v, err := s.Pop(0)
	require.NoError(t, err)
	require.Equal(t, NumberValue(2), v)
	require.Equal(t, 1, s.Len())
}

func TestStackOverflow(t *testing.T) {
	s := NewStack(1)
	require.NoError(t, s.Push(0, NumberValue(1)))
	err := s.Push(0, NumberValue(2))
	require.Error(t, err)
	var fault *RuntimeFault
	require.ErrorAs(t, err, &fault)
	require.Equal(t, FaultStackOverflow, fault.Kind)
}

func TestStackUnderflowOnPop(t *testing.T) {
	s := NewStack(4)
	_, err := s.Pop(0)
	require.Error(t, err)
	var fault *RuntimeFault
	require.ErrorAs(t, err, &fault)
	require.Equal(t, FaultStackUnderflow, fault.Kind)
}

func TestStackPeekDoesNotPop(t *testing.T) {
	s := NewStack(4)
	require.NoError(t, s.Push(0, NumberValue(7)))
	v, err := s.Peek(0)
	require.NoError(t, err)
	require.Equal(t, NumberValue(7), v)
	require.Equal(t, 1, s.Len())
}
