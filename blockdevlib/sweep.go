// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package blockdevlib

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/nixomose/blockdevgo/blockdevlib/blockdevinterfaces"
	"github.com/nixomose/nixomosegotools/tools"
)

type Sweep_report struct {
	Blocks_checked   int64
	Bytes_checked    int64
	Mismatched_bytes int64
	Bad_blocks       *bitset.BitSet // index of every block that had at least one wrong byte
}

func (this *Sweep_report) Bad_block_count() uint {
	if this.Bad_blocks == nil {
		return 0
	}
	return this.Bad_blocks.Count()
}

func (this *Sweep_report) Bad_block_list() []int64 {
	var out []int64
	if this.Bad_blocks == nil {
		return out
	}
	for i, ok := this.Bad_blocks.NextSet(0); ok; i, ok = this.Bad_blocks.NextSet(i + 1) {
		out = append(out, int64(i))
	}
	return out
}

func Fill(log *tools.Nixomosetools_logger, store blockdevinterfaces.Block_store, pattern byte) tools.Ret {
	// every byte of every block gets pattern
	var block_size = store.Get_block_size()
	var block_count = store.Get_block_count()
	if block_size <= 0 {
		return tools.ErrorWithCode(log, blockdevinterfaces.ERR_INITIALIZATION, "can't fill a block store with block size ", block_size)
	}

	var buf = make([]byte, block_size)
	for k := range buf {
		buf[k] = pattern
	}

	for i := int64(0); i < block_count; i++ {
		var ret = store.Write_block(i, buf)
		if ret != nil {
			return ret
		}
	}
	log.Debug("filled ", block_count, " blocks of ", block_size, " bytes with ", pattern)
	return nil
}

func Verify(log *tools.Nixomosetools_logger, store blockdevinterfaces.Block_store, pattern byte) (tools.Ret, Sweep_report) {
	/* read everything back and count what doesn't match. a mismatch isn't a failure, the report
	   says how bad it is, only an io failure stops the sweep. */
	var report Sweep_report
	var block_size = store.Get_block_size()
	var block_count = store.Get_block_count()
	if block_size <= 0 {
		return tools.ErrorWithCode(log, blockdevinterfaces.ERR_INITIALIZATION, "can't verify a block store with block size ", block_size), report
	}
	report.Bad_blocks = bitset.New(uint(block_count))

	var buf = make([]byte, block_size)
	for i := int64(0); i < block_count; i++ {
		var ret = store.Read_block(i, buf)
		if ret != nil {
			return ret, report
		}
		var mismatched int64 = 0
		for k := range buf {
			if buf[k] != pattern {
				mismatched++
			}
		}
		if mismatched > 0 {
			log.Debug("block ", i, " has ", mismatched, " bytes that aren't ", pattern)
			report.Bad_blocks.Set(uint(i))
			report.Mismatched_bytes += mismatched
		}
		report.Blocks_checked++
		report.Bytes_checked += block_size
	}
	return nil, report
}

func Fill_and_verify(log *tools.Nixomosetools_logger, store blockdevinterfaces.Block_store, pattern byte) (tools.Ret, Sweep_report) {
	var ret = Fill(log, store, pattern)
	if ret != nil {
		return ret, Sweep_report{}
	}
	return Verify(log, store, pattern)
}
