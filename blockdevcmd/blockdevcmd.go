package main

import (
	"container/list"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/nixomose/blockdevgo/blockdevlib"
	"github.com/nixomose/blockdevgo/blockdevlib/blockdevinterfaces"
	"github.com/nixomose/blockdevgo/blockdevlib/pipeline"
	"github.com/nixomose/blockdevgo/blockdevlib/storage"
	"github.com/nixomose/nixomosegotools/tools"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const DEFAULT_BACKING_STORE = "dev.bin"
const DEFAULT_RAMDISK_BLOCK_SIZE = 4096
const DEFAULT_RAMDISK_BLOCK_COUNT = 1024

type cmd_options struct {
	backing_store string
	geometry_mode string
	direct_io     bool

	block_count int64
	index       int64
	pattern     string

	memory            bool
	memory_block_size int64
}

func main() {
	var log = tools.New_Nixomosetools_logger(tools.DEBUG)
	var root = new_root_command(log)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func ret_to_error(ret tools.Ret) error {
	if ret == nil {
		return nil
	}
	return errors.New(ret.Get_errmsg())
}

func new_root_command(log *tools.Nixomosetools_logger) *cobra.Command {
	var opts cmd_options

	var root = &cobra.Command{
		Use:          "blockdevcmd",
		Short:        "read and write a backing file as an array of fixed size blocks",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.backing_store, "backing", "b", DEFAULT_BACKING_STORE, "backing device/file")
	root.PersistentFlags().StringVar(&opts.geometry_mode, "geometry", blockdevlib.TXT_GEOMETRY_ALLOCATED,
		"how block count is figured: allocated (st_blocks*512/blksize) or logical (st_size/blksize)")
	root.PersistentFlags().BoolVar(&opts.direct_io, "direct", false, "open the backing file with O_DIRECT")

	root.AddCommand(new_info_command(log, &opts))
	root.AddCommand(new_create_command(log, &opts))
	root.AddCommand(new_verify_command(log, &opts))
	root.AddCommand(new_read_command(log, &opts))
	root.AddCommand(new_write_command(log, &opts))
	return root
}

func add_xor_flag(flags *pflag.FlagSet) {
	flags.Uint8(pipeline.TXT_XOR_FLAG, 0, "xor every byte going to and from the store with this key, 0 is off")
}

func get_pattern(log *tools.Nixomosetools_logger, opts *cmd_options) (tools.Ret, byte) {
	if len(opts.pattern) != 1 {
		return tools.Error(log, "pattern must be exactly one byte, got: ", opts.pattern), 0
	}
	return nil, opts.pattern[0]
}

func open_file_store(log *tools.Nixomosetools_logger, opts *cmd_options) (tools.Ret, *blockdevlib.File_block_store) {
	var ret, mode = blockdevlib.Parse_geometry_mode(log, opts.geometry_mode)
	if ret != nil {
		return ret, nil
	}
	var config = blockdevlib.Block_store_config{
		Path:          opts.backing_store,
		Geometry_mode: mode,
		Direct_io:     opts.direct_io,
	}
	var store *blockdevlib.File_block_store
	ret, store = blockdevlib.Open_file_block_store(log, config)
	if ret != nil {
		return ret, nil
	}
	log.Debug("opened backing store ", config.Path, " geometry mode: ", mode.String(),
		" block size: ", store.Get_block_size(), " block count: ", store.Get_block_count())
	return nil, store
}

func wrap_pipeline(log *tools.Nixomosetools_logger, cmd *cobra.Command,
	store blockdevinterfaces.Block_store) (tools.Ret, blockdevinterfaces.Block_store) {
	/* only put the pipeline in if somebody asked for it */
	var xor = pipeline.New_xor_element(log, 0)
	var ret = xor.Process_parameters(cmd)
	if ret != nil {
		return ret, nil
	}
	if xor.Get_key() == 0 {
		return nil, store
	}
	var data_pipeline = list.New()
	data_pipeline.PushBack(xor)
	var pipelined *blockdevlib.Pipelined_block_store
	ret, pipelined = blockdevlib.New_pipelined_block_store(log, store, data_pipeline)
	if ret != nil {
		return ret, nil
	}
	return nil, pipelined
}

func new_info_command(log *tools.Nixomosetools_logger, opts *cmd_options) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "print the geometry of the backing store",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ret, store = open_file_store(log, opts)
			if ret != nil {
				return ret_to_error(ret)
			}
			defer store.Close()

			var out = cmd.OutOrStdout()
			fmt.Fprintf(out, "Size: %d\n", store.Get_block_size())
			fmt.Fprintf(out, "Count: %d\n", store.Get_block_count())
			fmt.Fprintf(out, "Bytes: %d\n", store.Get_geometry().Size_in_bytes())
			return nil
		},
	}
}

func new_create_command(log *tools.Nixomosetools_logger, opts *cmd_options) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "create",
		Short: "create and allocate a new backing file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ret, geometry = blockdevlib.Create_backing_file(log, opts.backing_store, opts.block_count)
			if ret != nil {
				return ret_to_error(ret)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s: %d blocks of %d bytes\n", opts.backing_store,
				geometry.Block_count, geometry.Block_size)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&opts.block_count, "count", "n", 1024, "number of blocks")
	return cmd
}

func new_verify_command(log *tools.Nixomosetools_logger, opts *cmd_options) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "verify",
		Short: "write a pattern to every block, read it all back, and count mismatches",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ret, pattern = get_pattern(log, opts)
			if ret != nil {
				return ret_to_error(ret)
			}

			var store blockdevinterfaces.Block_store
			if opts.memory {
				var ramdisk *storage.Ramdisk_store
				ret, ramdisk = storage.New_ramdisk_store(log, opts.memory_block_size, opts.block_count)
				if ret != nil {
					return ret_to_error(ret)
				}
				store = ramdisk
			} else {
				var file_store *blockdevlib.File_block_store
				ret, file_store = open_file_store(log, opts)
				if ret != nil {
					return ret_to_error(ret)
				}
				defer file_store.Close()
				store = file_store
			}

			ret, store = wrap_pipeline(log, cmd, store)
			if ret != nil {
				return ret_to_error(ret)
			}

			var report blockdevlib.Sweep_report
			ret, report = blockdevlib.Fill_and_verify(log, store, pattern)
			if ret != nil {
				return ret_to_error(ret)
			}

			var out = cmd.OutOrStdout()
			fmt.Fprintf(out, "Blocks: %d\n", report.Blocks_checked)
			fmt.Fprintf(out, "Bytes: %d\n", report.Bytes_checked)
			fmt.Fprintf(out, "Mismatched bytes: %d\n", report.Mismatched_bytes)
			if report.Mismatched_bytes > 0 {
				fmt.Fprintf(out, "Bad blocks: %v\n", report.Bad_block_list())
				return fmt.Errorf("expected %q in every byte, %d bytes in %d blocks didn't match",
					pattern, report.Mismatched_bytes, report.Bad_block_count())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.pattern, "pattern", "p", string(blockdevlib.DEFAULT_FILL_PATTERN), "byte to fill with")
	cmd.Flags().BoolVar(&opts.memory, "memory", false, "sweep a ramdisk instead of the backing file")
	cmd.Flags().Int64Var(&opts.memory_block_size, "block-size", DEFAULT_RAMDISK_BLOCK_SIZE, "ramdisk block size")
	cmd.Flags().Int64Var(&opts.block_count, "block-count", DEFAULT_RAMDISK_BLOCK_COUNT, "ramdisk block count")
	add_xor_flag(cmd.Flags())
	return cmd
}

func new_read_command(log *tools.Nixomosetools_logger, opts *cmd_options) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "read",
		Short: "hex dump one block",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ret, file_store = open_file_store(log, opts)
			if ret != nil {
				return ret_to_error(ret)
			}
			defer file_store.Close()

			var store blockdevinterfaces.Block_store
			ret, store = wrap_pipeline(log, cmd, file_store)
			if ret != nil {
				return ret_to_error(ret)
			}

			var data = make([]byte, store.Get_block_size())
			ret = store.Read_block(opts.index, data)
			if ret != nil {
				return ret_to_error(ret)
			}
			fmt.Fprint(cmd.OutOrStdout(), hex.Dump(data))
			return nil
		},
	}
	cmd.Flags().Int64VarP(&opts.index, "index", "i", 0, "block index")
	add_xor_flag(cmd.Flags())
	return cmd
}

func new_write_command(log *tools.Nixomosetools_logger, opts *cmd_options) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "write",
		Short: "fill one block with a pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ret, pattern = get_pattern(log, opts)
			if ret != nil {
				return ret_to_error(ret)
			}
			var file_store *blockdevlib.File_block_store
			ret, file_store = open_file_store(log, opts)
			if ret != nil {
				return ret_to_error(ret)
			}
			defer file_store.Close()

			var store blockdevinterfaces.Block_store
			ret, store = wrap_pipeline(log, cmd, file_store)
			if ret != nil {
				return ret_to_error(ret)
			}

			var data = make([]byte, store.Get_block_size())
			for k := range data {
				data[k] = pattern
			}
			ret = store.Write_block(opts.index, data)
			if ret != nil {
				return ret_to_error(ret)
			}
			return ret_to_error(file_store.Sync())
		},
	}
	cmd.Flags().Int64VarP(&opts.index, "index", "i", 0, "block index")
	cmd.Flags().StringVarP(&opts.pattern, "pattern", "p", string(blockdevlib.DEFAULT_FILL_PATTERN), "byte to fill with")
	add_xor_flag(cmd.Flags())
	return cmd
}
