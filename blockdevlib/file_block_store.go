// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

/* This module exposes a backing file as an array of fixed size blocks. Block size and count come
from the file's metadata once at initialization, after that every read and write goes straight
to the file, nothing is cached and nothing is retried. */

package blockdevlib

import (
	"io"
	"os"

	"github.com/ncw/directio"
	"github.com/nixomose/blockdevgo/blockdevlib/blockdevinterfaces"
	"github.com/nixomose/nixomosegotools/tools"
	"golang.org/x/sys/unix"
)

type store_state int

const (
	state_uninitialized store_state = iota
	state_ready
	state_closed
)

type Block_store_config struct {
	Path          string
	Geometry_mode Geometry_mode
	Direct_io     bool // open with O_DIRECT, block size must line up with directio.AlignSize
}

type File_block_store struct {
	m_log    *tools.Nixomosetools_logger
	m_config Block_store_config
	m_state  store_state
	m_file   *os.File

	m_block_size  int64
	m_block_count int64

	// only for direct io, the caller's buffer can be anywhere, O_DIRECT wants it aligned.
	m_bounce []byte
}

var _ blockdevinterfaces.Block_store = &File_block_store{}
var _ blockdevinterfaces.Block_store = (*File_block_store)(nil)

func New_file_block_store(log *tools.Nixomosetools_logger, config Block_store_config) *File_block_store {
	var s File_block_store
	s.m_log = log
	s.m_config = config
	s.m_state = state_uninitialized
	s.m_file = nil
	s.m_block_size = BLOCK_STORE_UNINITIALIZED
	s.m_block_count = BLOCK_STORE_UNINITIALIZED
	s.m_bounce = nil
	return &s
}

func Open_file_block_store(log *tools.Nixomosetools_logger, config Block_store_config) (tools.Ret, *File_block_store) {
	var s = New_file_block_store(log, config)
	var ret = s.Initialize()
	if ret != nil {
		return ret, nil
	}
	return nil, s
}

func (this *File_block_store) open_backing_file() (*os.File, error) {
	if this.m_config.Direct_io {
		return directio.OpenFile(this.m_config.Path, os.O_RDWR, 0)
	}
	return os.OpenFile(this.m_config.Path, os.O_RDWR, 0)
}

func (this *File_block_store) Initialize() tools.Ret {
	/* nothing is set on the store until everything has worked, so a failure leaves the sentinels
	   in place and no file open. */
	if this.m_state == state_ready {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_INITIALIZATION,
			"block store is already initialized for: ", this.m_config.Path)
	}
	if this.m_state == state_closed {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_INITIALIZATION,
			"block store for: ", this.m_config.Path, " has been closed, make a new one")
	}

	var file, err = this.open_backing_file()
	if err != nil {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_INITIALIZATION,
			"unable to open backing store ", this.m_config.Path, " for read/write, err: ", err)
	}

	var stat unix.Stat_t
	err = unix.Fstat(int(file.Fd()), &stat)
	if err != nil {
		file.Close()
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_INITIALIZATION,
			"unable to get metadata for backing store ", this.m_config.Path, ", err: ", err)
	}

	var ret, geometry = Compute_geometry(this.m_log, &stat, this.m_config.Geometry_mode)
	if ret != nil {
		file.Close()
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_INITIALIZATION,
			"unable to compute geometry for backing store ", this.m_config.Path, ", error: ", ret.Get_errmsg())
	}

	var bounce []byte = nil
	if this.m_config.Direct_io {
		var align = int64(directio.AlignSize)
		if align > 0 && geometry.Block_size%align != 0 {
			file.Close()
			return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_INITIALIZATION,
				"block size ", geometry.Block_size, " is not a multiple of the direct io alignment ", align)
		}
		bounce = directio.AlignedBlock(int(geometry.Block_size))
	}

	this.m_file = file
	this.m_block_size = geometry.Block_size
	this.m_block_count = geometry.Block_count
	this.m_bounce = bounce
	this.m_state = state_ready
	return nil
}

func (this *File_block_store) Is_ready() bool {
	return this.m_state == state_ready
}

func (this *File_block_store) Get_block_size() int64 {
	return this.m_block_size
}

func (this *File_block_store) Get_block_count() int64 {
	return this.m_block_count
}

func (this *File_block_store) Get_geometry() Geometry {
	return Geometry{Block_size: this.m_block_size, Block_count: this.m_block_count}
}

func (this *File_block_store) Get_path() string {
	return this.m_config.Path
}

func (this *File_block_store) check_request(index int64, data []byte) tools.Ret {
	if this.m_state != state_ready {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_INITIALIZATION,
			"block store for ", this.m_config.Path, " is not open")
	}
	if int64(len(data)) != this.m_block_size {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_INVALID_BUFFER,
			"invalid buffer length passed, buffer is: ", len(data), " but block size is: ", this.m_block_size)
	}
	if index < 0 || index >= this.m_block_count {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_OUT_OF_RANGE,
			"block index ", index, " out of range, block count is: ", this.m_block_count)
	}
	return nil
}

func (this *File_block_store) seek_to_block(index int64) tools.Ret {
	var offset = index * this.m_block_size
	var _, err = this.m_file.Seek(offset, io.SeekStart)
	if err != nil {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_IO,
			"unable to seek to block ", index, " offset ", offset, " in ", this.m_config.Path, ", err: ", err)
	}
	return nil
}

func (this *File_block_store) Read_block(index int64, data []byte) tools.Ret {
	var ret = this.check_request(index, data)
	if ret != nil {
		return ret
	}
	ret = this.seek_to_block(index)
	if ret != nil {
		return ret
	}

	var readbuffer = data
	if this.m_bounce != nil {
		readbuffer = this.m_bounce
	}

	// one read, if it comes back short that's the answer.
	var n, err = this.m_file.Read(readbuffer)
	if err != nil && err != io.EOF {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_IO,
			"unable to read block ", index, " from ", this.m_config.Path, ", err: ", err)
	}
	if int64(n) != this.m_block_size {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_IO,
			"short read of block ", index, " from ", this.m_config.Path, ", got ", n, " of ", this.m_block_size)
	}

	if this.m_bounce != nil {
		copy(data, this.m_bounce)
	}
	return nil
}

func (this *File_block_store) Write_block(index int64, data []byte) tools.Ret {
	var ret = this.check_request(index, data)
	if ret != nil {
		return ret
	}
	ret = this.seek_to_block(index)
	if ret != nil {
		return ret
	}

	var writebuffer = data
	if this.m_bounce != nil {
		copy(this.m_bounce, data)
		writebuffer = this.m_bounce
	}

	var n, err = this.m_file.Write(writebuffer)
	if err != nil {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_IO,
			"unable to write block ", index, " to ", this.m_config.Path, ", wrote ", n, " of ", this.m_block_size, ", err: ", err)
	}
	if int64(n) != this.m_block_size {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_IO,
			"short write of block ", index, " to ", this.m_config.Path, ", wrote ", n, " of ", this.m_block_size)
	}
	return nil
}

func (this *File_block_store) Sync() tools.Ret {
	if this.m_state != state_ready {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_INITIALIZATION,
			"block store for ", this.m_config.Path, " is not open")
	}
	var err = this.m_file.Sync()
	if err != nil {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_IO, "unable to sync ", this.m_config.Path, ", err: ", err)
	}
	return nil
}

func (this *File_block_store) Close() tools.Ret {
	if this.m_state != state_ready {
		return nil
	}
	this.m_state = state_closed
	var err = this.m_file.Close()
	this.m_file = nil
	if err != nil {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_IO, "unable to close backing store ", this.m_config.Path, ", err: ", err)
	}
	return nil
}
