// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package blockdevlib

import (
	"errors"
	"math"
	"os"
	"syscall"

	"github.com/nixomose/blockdevgo/blockdevlib/blockdevinterfaces"
	"github.com/nixomose/nixomosegotools/tools"
	"golang.org/x/sys/unix"
)

func Create_backing_file(log *tools.Nixomosetools_logger, path string, block_count int64) (tools.Ret, Geometry) {
	/* make a new backing file big enough for block_count blocks of whatever size the filesystem
	   it lands on likes. it has to actually be allocated, not just truncated out to size, because
	   the default geometry counts allocated 512 byte units, and a sparse file has none. */
	if block_count < 0 {
		return tools.ErrorWithCode(log, blockdevinterfaces.ERR_INITIALIZATION, "invalid block count: ", block_count),
			Uninitialized_geometry()
	}

	var file, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, backing_file_mode)
	if err != nil {
		return tools.ErrorWithCode(log, blockdevinterfaces.ERR_INITIALIZATION, "unable to create backing file ", path, ", err: ", err),
			Uninitialized_geometry()
	}
	/* we made it, so if anything below fails it's ours to get rid of, otherwise O_EXCL
	   fails every retry until somebody deletes it by hand. */
	var created bool = false
	defer func() {
		file.Close()
		if !created {
			os.Remove(path)
		}
	}()

	var stat unix.Stat_t
	err = unix.Fstat(int(file.Fd()), &stat)
	if err != nil {
		return tools.ErrorWithCode(log, blockdevinterfaces.ERR_INITIALIZATION, "unable to stat new backing file ", path, ", err: ", err),
			Uninitialized_geometry()
	}
	var block_size = int64(stat.Blksize)
	if block_size <= 0 {
		return tools.ErrorWithCode(log, blockdevinterfaces.ERR_INITIALIZATION, "filesystem reports an invalid preferred io size: ", block_size),
			Uninitialized_geometry()
	}

	if block_count > math.MaxInt64/block_size {
		return tools.ErrorWithCode(log, blockdevinterfaces.ERR_OUT_OF_RANGE, "block count ", block_count, " of ", block_size,
			" byte blocks is too large for a file"), Uninitialized_geometry()
	}
	var size = block_count * block_size
	if size > 0 {
		err = unix.Fallocate(int(file.Fd()), 0, 0, size)
		if err != nil {
			if !errors.Is(err, syscall.EOPNOTSUPP) && !errors.Is(err, syscall.ENOSYS) {
				return tools.ErrorWithCode(log, blockdevinterfaces.ERR_IO, "unable to allocate ", size, " bytes for ", path, ", err: ", err),
					Uninitialized_geometry()
			}
			log.Debug("fallocate not supported for ", path, ", writing zeroes instead")
			var ret = write_zero_blocks(log, file, block_size, block_count)
			if ret != nil {
				return ret, Uninitialized_geometry()
			}
		}
	}

	err = file.Sync()
	if err != nil {
		return tools.ErrorWithCode(log, blockdevinterfaces.ERR_IO, "unable to sync new backing file ", path, ", err: ", err),
			Uninitialized_geometry()
	}

	created = true
	log.Debug("created backing file ", path, " with ", block_count, " blocks of ", block_size, " bytes")
	return nil, Geometry{Block_size: block_size, Block_count: block_count}
}

func write_zero_blocks(log *tools.Nixomosetools_logger, file *os.File, block_size int64, block_count int64) tools.Ret {
	var zeroes = make([]byte, block_size)
	for block := int64(0); block < block_count; block++ {
		var n, err = file.WriteAt(zeroes, block*block_size)
		if err != nil {
			return tools.ErrorWithCode(log, blockdevinterfaces.ERR_IO, "unable to write zero block ", block, " to ", file.Name(), ", err: ", err)
		}
		if int64(n) != block_size {
			return tools.ErrorWithCode(log, blockdevinterfaces.ERR_IO, "short write of zero block ", block, ", wrote ", n, " of ", block_size)
		}
	}
	return nil
}
