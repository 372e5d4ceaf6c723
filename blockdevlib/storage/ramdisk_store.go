// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package storage

import (
	"github.com/nixomose/blockdevgo/blockdevlib/blockdevinterfaces"
	"github.com/nixomose/nixomosegotools/tools"
)

var _ blockdevinterfaces.Block_store = &Ramdisk_store{}
var _ blockdevinterfaces.Block_store = (*Ramdisk_store)(nil)

type Ramdisk_store struct {
	/* For testing things that sit on top of a block store without a backing file we make a simple ramdisk.
	   geometry is whatever you tell it, blocks that were never written read back as zeroes. */

	m_log         *tools.Nixomosetools_logger
	m_block_size  int64
	m_block_count int64
	ramdisk       map[int64][]byte
}

func New_ramdisk_store(log *tools.Nixomosetools_logger, block_size int64, block_count int64) (tools.Ret, *Ramdisk_store) {
	if block_size <= 0 || block_count < 0 {
		return tools.ErrorWithCode(log, blockdevinterfaces.ERR_INITIALIZATION, "invalid ramdisk geometry, block size: ", block_size,
			" block count: ", block_count), nil
	}
	var r Ramdisk_store
	r.m_log = log
	r.m_block_size = block_size
	r.m_block_count = block_count
	r.ramdisk = make(map[int64][]byte)
	return nil, &r
}

func (this *Ramdisk_store) Get_block_size() int64 {
	return this.m_block_size
}

func (this *Ramdisk_store) Get_block_count() int64 {
	return this.m_block_count
}

func (this *Ramdisk_store) check_request(index int64, data []byte) tools.Ret {
	if int64(len(data)) != this.m_block_size {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_INVALID_BUFFER,
			"invalid buffer length passed, buffer is: ", len(data), " but block size is: ", this.m_block_size)
	}
	if index < 0 || index >= this.m_block_count {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_OUT_OF_RANGE,
			"ramdisk block index ", index, " out of range, block count is: ", this.m_block_count)
	}
	return nil
}

func (this *Ramdisk_store) Read_block(index int64, dataout []byte) tools.Ret {
	var ret = this.check_request(index, dataout)
	if ret != nil {
		return ret
	}

	var data, found = this.ramdisk[index]
	if !found {
		// return a bunch of zeroes, a block's worth I mean.
		data = make([]byte, this.m_block_size)
	}

	// copy it right into the caller's buffer
	var copied int = copy(dataout, data)
	if int64(copied) != this.m_block_size {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_IO, "unable to copy data from ramdisk, only copied: ", copied)
	}
	return nil
}

func (this *Ramdisk_store) Write_block(index int64, data []byte) tools.Ret {
	var ret = this.check_request(index, data)
	if ret != nil {
		return ret
	}

	var d = make([]byte, this.m_block_size)
	var copied int = copy(d, data)
	if int64(copied) != this.m_block_size {
		return tools.ErrorWithCode(this.m_log, blockdevinterfaces.ERR_IO, "unable to copy data to write to ramdisk, only copied: ", copied)
	}
	this.ramdisk[index] = d
	return nil
}

func (this *Ramdisk_store) Written_block_count() int {
	return len(this.ramdisk)
}
