// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package blockdevinterfaces

import "github.com/nixomose/nixomosegotools/tools"

type Block_store interface {
	/* a fixed number of fixed size blocks addressed by index. data must be exactly
	   Get_block_size() bytes and index must be in [0, Get_block_count()) */

	Read_block(index int64, data []byte) tools.Ret

	Write_block(index int64, data []byte) tools.Ret

	Get_block_size() int64

	Get_block_count() int64
}

type Storage_mechanism interface {
	Read_bytes(start_in_bytes uint64, length uint32, data []byte) tools.Ret

	Write_bytes(start_in_bytes uint64, length uint32, data []byte) tools.Ret

	Discard_bytes(start_in_bytes uint64, length uint32) tools.Ret

	// this is the size of the blocks underneath, requests don't have to line up with it.
	Get_block_size() uint32
}
