package blockdevlib

import (
	"bytes"
	"testing"

	"github.com/nixomose/blockdevgo/blockdevlib/blockdevinterfaces"
	"github.com/nixomose/blockdevgo/blockdevlib/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func new_test_ramdisk(t *testing.T, block_size int64, block_count int64) *storage.Ramdisk_store {
	t.Helper()
	var ret, ramdisk = storage.New_ramdisk_store(new_test_log(), block_size, block_count)
	require.Nil(t, ret)
	return ramdisk
}

func new_test_byte_range(t *testing.T, block_size int64, block_count int64) (*Byte_range_storage, *storage.Ramdisk_store) {
	var ramdisk = new_test_ramdisk(t, block_size, block_count)
	return New_byte_range_storage(new_test_log(), ramdisk), ramdisk
}

func TestByteRange_UnalignedWriteSpanningBlocks(t *testing.T) {
	var b, ramdisk = new_test_byte_range(t, 16, 8)
	assert.Equal(t, uint32(16), b.Get_block_size())
	assert.Equal(t, uint64(128), b.Get_size_in_bytes())

	var data = []byte("0123456789abcdefghijklmnopqrstuvwxyz") // 36 bytes
	require.Nil(t, b.Write_bytes(10, uint32(len(data)), data))

	var readback = make([]byte, len(data))
	require.Nil(t, b.Read_bytes(10, uint32(len(data)), readback))
	assert.Equal(t, data, readback)

	// everything around it is still zero
	var all = make([]byte, 128)
	require.Nil(t, b.Read_bytes(0, 128, all))
	assert.Equal(t, make([]byte, 10), all[:10])
	assert.Equal(t, data, all[10:46])
	assert.Equal(t, make([]byte, 128-46), all[46:])

	// blocks 0 through 2 are touched, nothing else
	assert.Equal(t, 3, ramdisk.Written_block_count())
}

func TestByteRange_PartialOverwriteKeepsNeighbours(t *testing.T) {
	var b, _ = new_test_byte_range(t, 16, 4)
	var full = bytes.Repeat([]byte{'a'}, 64)
	require.Nil(t, b.Write_bytes(0, 64, full))

	require.Nil(t, b.Write_bytes(14, 4, []byte("WXYZ")))

	var all = make([]byte, 64)
	require.Nil(t, b.Read_bytes(0, 64, all))
	var expected = bytes.Repeat([]byte{'a'}, 64)
	copy(expected[14:], "WXYZ")
	assert.Equal(t, expected, all)
}

func TestByteRange_Discard(t *testing.T) {
	var b, _ = new_test_byte_range(t, 16, 4)
	require.Nil(t, b.Write_bytes(0, 64, bytes.Repeat([]byte{'a'}, 64)))

	require.Nil(t, b.Discard_bytes(8, 32))
	require.Nil(t, b.Discard_bytes(0, 0))

	var all = make([]byte, 64)
	require.Nil(t, b.Read_bytes(0, 64, all))
	assert.Equal(t, bytes.Repeat([]byte{'a'}, 8), all[:8])
	assert.Equal(t, make([]byte, 32), all[8:40])
	assert.Equal(t, bytes.Repeat([]byte{'a'}, 24), all[40:])
}

func TestByteRange_OutOfRange(t *testing.T) {
	var b, _ = new_test_byte_range(t, 16, 4)

	var ret = b.Write_bytes(60, 8, make([]byte, 8))
	assert.True(t, blockdevinterfaces.Is_out_of_range_error(ret))
	ret = b.Read_bytes(64, 1, make([]byte, 1))
	assert.True(t, blockdevinterfaces.Is_out_of_range_error(ret))
	ret = b.Discard_bytes(0, 65)
	assert.True(t, blockdevinterfaces.Is_out_of_range_error(ret))
}

func TestByteRange_ShortCallerBuffer(t *testing.T) {
	var b, _ = new_test_byte_range(t, 16, 4)

	var ret = b.Read_bytes(0, 10, make([]byte, 5))
	assert.True(t, blockdevinterfaces.Is_invalid_buffer_error(ret))
	ret = b.Write_bytes(0, 10, make([]byte, 5))
	assert.True(t, blockdevinterfaces.Is_invalid_buffer_error(ret))
}

func TestByteRange_OverFileStore(t *testing.T) {
	var store, geometry, _ = open_test_store(t, 4)
	var b = New_byte_range_storage(new_test_log(), store)

	var data = bytes.Repeat([]byte("block"), 10)
	var start = uint64(geometry.Block_size) - 7
	require.Nil(t, b.Write_bytes(start, uint32(len(data)), data))

	var readback = make([]byte, len(data))
	require.Nil(t, b.Read_bytes(start, uint32(len(data)), readback))
	assert.Equal(t, data, readback)
}
