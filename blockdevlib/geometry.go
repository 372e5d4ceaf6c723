// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package blockdevlib

import (
	"strings"

	"github.com/nixomose/blockdevgo/blockdevlib/blockdevinterfaces"
	"github.com/nixomose/nixomosegotools/tools"
	"golang.org/x/sys/unix"
)

type Geometry_mode int

const (
	/* block count is the allocated size (st_blocks * 512) / block size. for a raw device
	   or a fully allocated file that's the whole thing, for a sparse file it's only what's on disk. */
	GEOMETRY_ALLOCATED Geometry_mode = iota
	// block count is st_size / block size, what ls says the file is.
	GEOMETRY_LOGICAL
)

const TXT_GEOMETRY_ALLOCATED string = "allocated"
const TXT_GEOMETRY_LOGICAL string = "logical"

type Geometry struct {
	Block_size  int64 `json:"block_size_in_bytes"`
	Block_count int64 `json:"block_count"`
}

func Uninitialized_geometry() Geometry {
	return Geometry{Block_size: BLOCK_STORE_UNINITIALIZED, Block_count: BLOCK_STORE_UNINITIALIZED}
}

func (this Geometry) Size_in_bytes() int64 {
	return this.Block_size * this.Block_count
}

func (this Geometry_mode) String() string {
	switch this {
	case GEOMETRY_ALLOCATED:
		return TXT_GEOMETRY_ALLOCATED
	case GEOMETRY_LOGICAL:
		return TXT_GEOMETRY_LOGICAL
	}
	return "unknown"
}

func Parse_geometry_mode(log *tools.Nixomosetools_logger, mode string) (tools.Ret, Geometry_mode) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case TXT_GEOMETRY_ALLOCATED:
		return nil, GEOMETRY_ALLOCATED
	case TXT_GEOMETRY_LOGICAL:
		return nil, GEOMETRY_LOGICAL
	}
	return tools.ErrorWithCode(log, blockdevinterfaces.ERR_INITIALIZATION, "invalid geometry mode: ", mode,
		", must be ", TXT_GEOMETRY_ALLOCATED, " or ", TXT_GEOMETRY_LOGICAL), GEOMETRY_ALLOCATED
}

func Compute_geometry(log *tools.Nixomosetools_logger, stat *unix.Stat_t, mode Geometry_mode) (tools.Ret, Geometry) {
	/* geometry is figured once from the backing file's metadata, nothing about it is stored in the file. */
	var block_size = int64(stat.Blksize)
	if block_size <= 0 {
		return tools.ErrorWithCode(log, blockdevinterfaces.ERR_INITIALIZATION,
			"backing store reports an invalid preferred io size: ", block_size), Uninitialized_geometry()
	}

	var g Geometry
	g.Block_size = block_size
	switch mode {
	case GEOMETRY_ALLOCATED:
		g.Block_count = (int64(stat.Blocks) * STAT_BLOCK_UNIT_SIZE) / block_size
	case GEOMETRY_LOGICAL:
		g.Block_count = int64(stat.Size) / block_size
	default:
		return tools.ErrorWithCode(log, blockdevinterfaces.ERR_INITIALIZATION, "unsupported geometry mode: ", int(mode)),
			Uninitialized_geometry()
	}
	if g.Block_count < 0 {
		g.Block_count = 0
	}
	return nil, g
}
