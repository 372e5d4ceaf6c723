// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package blockdevlib

import (
	"sync"

	"github.com/nixomose/blockdevgo/blockdevlib/blockdevinterfaces"
	"github.com/nixomose/nixomosegotools/tools"
)

/* the block stores themselves assume one caller at a time, a file block store moves the file's
   cursor around between the seek and the read. if you've got more than one goroutine, wrap it in this. */

type Locked_block_store struct {
	m_lock  sync.Mutex
	m_store blockdevinterfaces.Block_store
}

var _ blockdevinterfaces.Block_store = &Locked_block_store{}

func New_locked_block_store(store blockdevinterfaces.Block_store) *Locked_block_store {
	var l Locked_block_store
	l.m_store = store
	return &l
}

func (this *Locked_block_store) Read_block(index int64, data []byte) tools.Ret {
	this.m_lock.Lock()
	defer this.m_lock.Unlock()
	return this.m_store.Read_block(index, data)
}

func (this *Locked_block_store) Write_block(index int64, data []byte) tools.Ret {
	this.m_lock.Lock()
	defer this.m_lock.Unlock()
	return this.m_store.Write_block(index, data)
}

func (this *Locked_block_store) Get_block_size() int64 {
	this.m_lock.Lock()
	defer this.m_lock.Unlock()
	return this.m_store.Get_block_size()
}

func (this *Locked_block_store) Get_block_count() int64 {
	this.m_lock.Lock()
	defer this.m_lock.Unlock()
	return this.m_store.Get_block_count()
}
