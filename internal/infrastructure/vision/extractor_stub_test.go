//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGoCVExtractor_StubWithoutBuildTag(t *testing.T) {
	_, err := NewGoCVExtractor(AlgorithmORB).Extract(context.Background(), []byte{1, 2, 3})
	require.EqualError(t, err, "gocv build tag is not enabled")
}
