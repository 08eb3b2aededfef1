//go:build linux

package sharedmemory

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segmentName(t *testing.T) string {
	return fmt.Sprintf("gosharedgl-test-%d-%s", os.Getpid(), t.Name())
}

func TestCreateOpenShare(t *testing.T) {
	name := segmentName(t)
	owner, err := CreateSharedMemory(name, 64)
	require.NoError(t, err)
	defer owner.Close()

	assert.Equal(t, name, owner.Name())
	assert.Equal(t, 64, owner.GetSize())
	assert.Len(t, owner.Bytes(), 64)
	assert.NotNil(t, owner.GetPtr())

	n, err := owner.WriteAt([]byte("frame"), 10)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	client, err := OpenSharedMemory(name, 64)
	require.NoError(t, err)
	defer client.Close()

	got := make([]byte, 5)
	_, err = client.ReadAt(got, 10)
	require.NoError(t, err)
	assert.Equal(t, "frame", string(got))

	client.Bytes()[0] = 0xAB
	assert.Equal(t, byte(0xAB), owner.Bytes()[0])
}

func TestBounds(t *testing.T) {
	s, err := CreateSharedMemory(segmentName(t), 8)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.WriteAt([]byte("0123456789"), 4)
	assert.Equal(t, 4, n)
	assert.ErrorIs(t, err, io.ErrShortWrite)

	buf := make([]byte, 8)
	n, err = s.ReadAt(buf, 4)
	assert.Equal(t, 4, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "0123", string(buf[:n]))

	_, err = s.ReadAt(buf, 8)
	assert.ErrorIs(t, err, io.EOF)
	_, err = s.WriteAt(buf, -1)
	assert.ErrorIs(t, err, io.EOF)
}

func TestOwnerCloseUnlinks(t *testing.T) {
	name := segmentName(t)
	owner, err := CreateSharedMemory(name, 16)
	require.NoError(t, err)

	client, err := OpenSharedMemory(name, 16)
	require.NoError(t, err)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	// A client close leaves the segment in place.
	again, err := OpenSharedMemory(name, 16)
	require.NoError(t, err)
	require.NoError(t, again.Close())

	require.NoError(t, owner.Close())
	assert.Nil(t, owner.Bytes())
	assert.Nil(t, owner.GetPtr())
	assert.Zero(t, owner.GetSize())
	_, err = OpenSharedMemory(name, 16)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCreateReplacesStale(t *testing.T) {
	name := segmentName(t)
	stale, err := CreateSharedMemory(name, 16)
	require.NoError(t, err)
	stale.Bytes()[0] = 1

	fresh, err := CreateSharedMemory(name, 32)
	require.NoError(t, err)
	defer fresh.Close()
	assert.Zero(t, fresh.Bytes()[0])

	// The stale mapping survives its segment's unlink.
	assert.Equal(t, byte(1), stale.Bytes()[0])
	stale.m.parent = false
	require.NoError(t, stale.Close())
}

func TestOpenRejects(t *testing.T) {
	_, err := OpenSharedMemory(segmentName(t), 16)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	name := segmentName(t)
	s, err := CreateSharedMemory(name, 16)
	require.NoError(t, err)
	defer s.Close()
	_, err = OpenSharedMemory(name, 32)
	assert.ErrorContains(t, err, "smaller")

	for _, bad := range []string{"", "a/b"} {
		_, err := CreateSharedMemory(bad, 16)
		assert.Error(t, err, bad)
	}
	_, err = CreateSharedMemory(name+"-zero", 0)
	assert.Error(t, err)
}
