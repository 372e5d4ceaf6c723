package blockdevlib

import (
	"bytes"
	"container/list"
	"testing"

	"github.com/nixomose/blockdevgo/blockdevlib/blockdevinterfaces"
	"github.com/nixomose/blockdevgo/blockdevlib/pipeline"
	"github.com/nixomose/nixomosegotools/tools"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type truncating_element struct{}

func (this *truncating_element) Process_parameters(params *cobra.Command) tools.Ret { return nil }
func (this *truncating_element) Process_device(device blockdevinterfaces.Block_store) tools.Ret {
	return nil
}
func (this *truncating_element) Pipe_in(data_in_out *[]byte) tools.Ret {
	*data_in_out = (*data_in_out)[:len(*data_in_out)-1]
	return nil
}
func (this *truncating_element) Pipe_out(data_in_out *[]byte) tools.Ret {
	*data_in_out = (*data_in_out)[:len(*data_in_out)-1]
	return nil
}

func TestPipelinedStore_Xor(t *testing.T) {
	var log = new_test_log()
	var ramdisk = new_test_ramdisk(t, 32, 4)
	var data_pipeline = list.New()
	data_pipeline.PushBack(pipeline.New_xor_element(log, 0x5a))

	var ret, p = New_pipelined_block_store(log, ramdisk, data_pipeline)
	require.Nil(t, ret)
	assert.Equal(t, int64(32), p.Get_block_size())
	assert.Equal(t, int64(4), p.Get_block_count())

	var data = bytes.Repeat([]byte{'a'}, 32)
	require.Nil(t, p.Write_block(1, data))
	assert.Equal(t, bytes.Repeat([]byte{'a'}, 32), data, "caller's buffer was modified")

	var raw = make([]byte, 32)
	require.Nil(t, ramdisk.Read_block(1, raw))
	assert.Equal(t, bytes.Repeat([]byte{'a' ^ 0x5a}, 32), raw)

	var readback = make([]byte, 32)
	require.Nil(t, p.Read_block(1, readback))
	assert.Equal(t, data, readback)
}

func TestPipelinedStore_TwoElementsUndoInOrder(t *testing.T) {
	var log = new_test_log()
	var ramdisk = new_test_ramdisk(t, 8, 2)
	var data_pipeline = list.New()
	data_pipeline.PushBack(pipeline.New_xor_element(log, 0x0f))
	data_pipeline.PushBack(pipeline.New_xor_element(log, 0xf0))

	var ret, p = New_pipelined_block_store(log, ramdisk, data_pipeline)
	require.Nil(t, ret)

	var data = []byte("12345678")
	require.Nil(t, p.Write_block(0, data))
	var raw = make([]byte, 8)
	require.Nil(t, ramdisk.Read_block(0, raw))
	for k := range raw {
		assert.Equal(t, data[k]^0xff, raw[k])
	}

	var readback = make([]byte, 8)
	require.Nil(t, p.Read_block(0, readback))
	assert.Equal(t, data, readback)
}

func TestPipelinedStore_RejectsNonElements(t *testing.T) {
	var log = new_test_log()
	var data_pipeline = list.New()
	data_pipeline.PushBack("not a pipeline element")

	var ret, p = New_pipelined_block_store(log, new_test_ramdisk(t, 8, 2), data_pipeline)
	assert.True(t, blockdevinterfaces.Is_initialization_error(ret))
	assert.Nil(t, p)
}

func TestPipelinedStore_LengthChangeIsRejected(t *testing.T) {
	var log = new_test_log()
	var ramdisk = new_test_ramdisk(t, 8, 2)
	var data_pipeline = list.New()
	data_pipeline.PushBack(&truncating_element{})

	var ret, p = New_pipelined_block_store(log, ramdisk, data_pipeline)
	require.Nil(t, ret)

	ret = p.Write_block(0, make([]byte, 8))
	assert.True(t, blockdevinterfaces.Is_invalid_buffer_error(ret))
	assert.Equal(t, 0, ramdisk.Written_block_count())

	ret = p.Read_block(0, make([]byte, 8))
	assert.True(t, blockdevinterfaces.Is_invalid_buffer_error(ret))
}

func TestPipelinedStore_PassesStoreErrorsThrough(t *testing.T) {
	var log = new_test_log()
	var ret, p = New_pipelined_block_store(log, new_test_ramdisk(t, 8, 2), list.New())
	require.Nil(t, ret)

	ret = p.Read_block(2, make([]byte, 8))
	assert.True(t, blockdevinterfaces.Is_out_of_range_error(ret))
}
