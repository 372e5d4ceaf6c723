// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package blockdevinterfaces

import (
	"syscall"

	"github.com/nixomose/nixomosegotools/tools"
)

/* every failure from a block store carries one of these in its errcode so the caller can tell
   what kind of failure it was without parsing the message. */

const ERR_INITIALIZATION int = int(syscall.ENODEV) // store couldn't be opened/queried, or isn't open
const ERR_IO int = int(syscall.EIO)                // seek/read/write failed or was short
const ERR_OUT_OF_RANGE int = int(syscall.ERANGE)   // block index outside [0, block_count)
const ERR_INVALID_BUFFER int = int(syscall.EINVAL) // caller's buffer isn't exactly one block

func has_code(r tools.Ret, code int) bool {
	if r == nil {
		return false
	}
	// some places negate errno codes, some don't, take both.
	return (r.Get_errcode() == code) || (r.Get_errcode() == -code)
}

func Is_initialization_error(r tools.Ret) bool {
	return has_code(r, ERR_INITIALIZATION)
}

func Is_io_error(r tools.Ret) bool {
	return has_code(r, ERR_IO)
}

func Is_out_of_range_error(r tools.Ret) bool {
	return has_code(r, ERR_OUT_OF_RANGE)
}

func Is_invalid_buffer_error(r tools.Ret) bool {
	return has_code(r, ERR_INVALID_BUFFER)
}
