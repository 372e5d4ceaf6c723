package blockdevlib

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockedStore_ConcurrentWriters(t *testing.T) {
	// the ramdisk's map would fall over with concurrent writers if the lock weren't there.
	var locked = New_locked_block_store(new_test_ramdisk(t, 64, 100))

	const numGoroutines = 100
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(index int64) {
			defer wg.Done()
			var data = bytes.Repeat([]byte{byte(index)}, 64)
			if ret := locked.Write_block(index, data); ret != nil {
				t.Errorf("write of block %d failed: %s", index, ret.Get_errmsg())
			}
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, int64(64), locked.Get_block_size())
	assert.Equal(t, int64(100), locked.Get_block_count())
	var readback = make([]byte, 64)
	for i := int64(0); i < numGoroutines; i++ {
		require.Nil(t, locked.Read_block(i, readback))
		assert.Equal(t, bytes.Repeat([]byte{byte(i)}, 64), readback)
	}
}

func TestLockedStore_OverFileStore(t *testing.T) {
	var store, _, _ = open_test_store(t, 8)
	var locked = New_locked_block_store(store)

	var wg sync.WaitGroup
	for i := int64(0); i < 8; i++ {
		wg.Add(1)
		go func(index int64) {
			defer wg.Done()
			var data = bytes.Repeat([]byte{byte('A' + index)}, int(locked.Get_block_size()))
			if ret := locked.Write_block(index, data); ret != nil {
				t.Errorf("write of block %d failed: %s", index, ret.Get_errmsg())
			}
		}(i)
	}
	wg.Wait()

	var readback = make([]byte, store.Get_block_size())
	for i := int64(0); i < 8; i++ {
		require.Nil(t, locked.Read_block(i, readback))
		assert.Equal(t, bytes.Repeat([]byte{byte('A' + i)}, int(store.Get_block_size())), readback)
	}
}
