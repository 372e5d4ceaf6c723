package pipeline

import (
	"testing"

	"github.com/nixomose/blockdevgo/blockdevlib/storage"
	"github.com/nixomose/nixomosegotools/tools"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXorElement_ProcessParameters(t *testing.T) {
	var log = tools.New_Nixomosetools_logger(tools.DEBUG)
	var cmd = &cobra.Command{Use: "test"}
	cmd.Flags().Uint8(TXT_XOR_FLAG, 0, "")
	require.NoError(t, cmd.Flags().Set(TXT_XOR_FLAG, "42"))

	var x = New_xor_element(log, 0)
	require.Nil(t, x.Process_parameters(cmd))
	assert.Equal(t, byte(42), x.Get_key())
	var ret, ramdisk = storage.New_ramdisk_store(log, 16, 1)
	require.Nil(t, ret)
	assert.Nil(t, x.Process_device(ramdisk))
}

func TestXorElement_MissingFlag(t *testing.T) {
	var x = New_xor_element(tools.New_Nixomosetools_logger(tools.DEBUG), 7)
	assert.NotNil(t, x.Process_parameters(&cobra.Command{Use: "test"}))
	assert.Equal(t, byte(7), x.Get_key())
}

func TestXorElement_InIsUndoneByOut(t *testing.T) {
	var x = New_xor_element(tools.New_Nixomosetools_logger(tools.DEBUG), 0x81)
	var data = []byte("some block data")

	require.Nil(t, x.Pipe_in(&data))
	assert.NotEqual(t, []byte("some block data"), data)
	assert.Equal(t, byte('s'^0x81), data[0])
	require.Nil(t, x.Pipe_out(&data))
	assert.Equal(t, []byte("some block data"), data)
}
