// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package blockdevlib

import (
	"container/list"

	"github.com/nixomose/blockdevgo/blockdevlib/blockdevinterfaces"
	"github.com/nixomose/nixomosegotools/tools"
)

type Pipelined_block_store struct {
	log           *tools.Nixomosetools_logger
	store         blockdevinterfaces.Block_store
	data_pipeline *list.List // of blockdevinterfaces.Data_pipeline_element, applied front to back on write, back to front on read
}

var _ blockdevinterfaces.Block_store = &Pipelined_block_store{}
var _ blockdevinterfaces.Block_store = (*Pipelined_block_store)(nil)

func New_pipelined_block_store(log *tools.Nixomosetools_logger, store blockdevinterfaces.Block_store,
	data_pipeline *list.List) (tools.Ret, *Pipelined_block_store) {
	/* check the list once here, not on every read and write, it doesn't change. */
	for item := data_pipeline.Front(); item != nil; item = item.Next() {
		var itemval = item.Value
		var pipeline_element, ok = itemval.(blockdevinterfaces.Data_pipeline_element)
		if !ok || pipeline_element == nil {
			return tools.ErrorWithCode(log, blockdevinterfaces.ERR_INITIALIZATION,
				"pipeline includes an element that isn't a data pipeline: ", itemval), nil
		}
		var ret = pipeline_element.Process_device(store)
		if ret != nil {
			return ret, nil
		}
	}

	var p Pipelined_block_store
	p.log = log
	p.store = store
	p.data_pipeline = data_pipeline
	return nil, &p
}

func (this *Pipelined_block_store) Get_block_size() int64 {
	return this.store.Get_block_size()
}

func (this *Pipelined_block_store) Get_block_count() int64 {
	return this.store.Get_block_count()
}

func (this *Pipelined_block_store) check_length(data []byte, what string) tools.Ret {
	if int64(len(data)) != this.store.Get_block_size() {
		return tools.ErrorWithCode(this.log, blockdevinterfaces.ERR_INVALID_BUFFER, "data pipeline ", what, " changed the block length to ",
			len(data), ", block size is: ", this.store.Get_block_size())
	}
	return nil
}

func (this *Pipelined_block_store) Read_block(index int64, data []byte) tools.Ret {
	var ret = this.store.Read_block(index, data)
	if ret != nil {
		return ret
	}

	/* elements update in place but may hand back a different slice, so work on a copy of the slice
	   header and copy the result back into the caller's buffer at the end. */
	var block = data
	for item := this.data_pipeline.Back(); item != nil; item = item.Prev() {
		var pipeline_element = item.Value.(blockdevinterfaces.Data_pipeline_element)
		ret = pipeline_element.Pipe_out(&block)
		if ret != nil {
			return ret
		}
		ret = this.check_length(block, "read")
		if ret != nil {
			return ret
		}
	}
	copy(data, block)
	return nil
}

func (this *Pipelined_block_store) Write_block(index int64, data []byte) tools.Ret {
	// don't scribble on the caller's buffer
	var block = append([]byte{}, data...)
	for item := this.data_pipeline.Front(); item != nil; item = item.Next() {
		var pipeline_element = item.Value.(blockdevinterfaces.Data_pipeline_element)
		var ret = pipeline_element.Pipe_in(&block)
		if ret != nil {
			return ret
		}
		ret = this.check_length(block, "write")
		if ret != nil {
			return ret
		}
	}
	return this.store.Write_block(index, block)
}
