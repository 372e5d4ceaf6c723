// Package blockdevinterfaces has a package comment
package blockdevinterfaces

import (
	"github.com/nixomose/nixomosegotools/tools"
	"github.com/spf13/cobra"
)

type Data_pipeline_element interface {

	/* this is the interface that allows one to add encoding or any other kind of data mutation
	as blocks go through the system. the block store underneath has a fixed block size so
	whatever an element does, it has to hand back exactly as many bytes as it was given. */

	Process_parameters(params *cobra.Command) tools.Ret
	Process_device(device Block_store) tools.Ret

	Pipe_in(data_in_out *[]byte) tools.Ret  // on the way to the store
	Pipe_out(data_in_out *[]byte) tools.Ret // on the way back to the caller
}
