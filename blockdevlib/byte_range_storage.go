// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

/* Package blockdevlib byte range storage

this implements the storage mechanism interface on top of a block store, so somebody can
read and write any byte position and length and we take care of breaking it up into whole blocks.

so it goes

caller (any pos, any length) -> byte range storage -> block store -> backing file

*/

package blockdevlib

import (
	"github.com/nixomose/blockdevgo/blockdevlib/blockdevinterfaces"
	"github.com/nixomose/nixomosegotools/tools"
)

type Byte_range_storage struct {
	log   *tools.Nixomosetools_logger
	store blockdevinterfaces.Block_store
}

var _ blockdevinterfaces.Storage_mechanism = &Byte_range_storage{}
var _ blockdevinterfaces.Storage_mechanism = (*Byte_range_storage)(nil)

func New_byte_range_storage(log *tools.Nixomosetools_logger, store blockdevinterfaces.Block_store) *Byte_range_storage {
	var b Byte_range_storage
	b.log = log
	b.store = store
	return &b
}

func (this *Byte_range_storage) Get_block_size() uint32 {
	return uint32(this.store.Get_block_size())
}

func (this *Byte_range_storage) Get_size_in_bytes() uint64 {
	return uint64(this.store.Get_block_size()) * uint64(this.store.Get_block_count())
}

func (this *Byte_range_storage) check_range(start_in_bytes uint64, length uint32) tools.Ret {
	if this.store.Get_block_size() <= 0 {
		return tools.ErrorWithCode(this.log, blockdevinterfaces.ERR_INITIALIZATION, "block store underneath is not initialized")
	}
	var end = start_in_bytes + uint64(length)
	if end < start_in_bytes || end > this.Get_size_in_bytes() {
		return tools.ErrorWithCode(this.log, blockdevinterfaces.ERR_OUT_OF_RANGE, "request for ", length, " bytes at ", start_in_bytes,
			" runs past the end of the store at ", this.Get_size_in_bytes())
	}
	return nil
}

func (this *Byte_range_storage) Read_bytes(start_in_bytes uint64, length uint32, data []byte) tools.Ret {
	/* they ask for pos+len, we return len bytes, by reading the partial first block if applicable
	 * and keep reading blocks until we satisfy the request. */
	if len(data) < int(length) {
		return tools.ErrorWithCode(this.log, blockdevinterfaces.ERR_INVALID_BUFFER,
			"Invalid read request, not enough storage supplied to read ", length, " bytes.")
	}
	var ret = this.check_range(start_in_bytes, length)
	if ret != nil {
		return ret
	}

	var block_size = this.Get_block_size()
	var currentblock uint64 = start_in_bytes / uint64(block_size) // first block we need, partial or not.
	var offsetinblock uint32 = uint32(start_in_bytes % uint64(block_size))

	var readbuffer = make([]byte, block_size)
	var howmuchread uint32 = 0
	var dataoutcopypos uint32 = 0 // running position in the caller's buffer
	for howmuchread < length {
		ret = this.store.Read_block(int64(currentblock), readbuffer)
		if ret != nil {
			return ret
		}

		var start uint32 = offsetinblock                          // for first block, start in middle if need be
		var end uint64 = uint64(start) + uint64(length-howmuchread) // absolute end position in buffer
		if end > uint64(block_size) {
			end = uint64(block_size)
		}
		var amounttoread uint32 = uint32(end) - start

		var copied = copy(data[dataoutcopypos:dataoutcopypos+amounttoread], readbuffer[start:end])
		if copied != int(amounttoread) {
			return tools.ErrorWithCode(this.log, blockdevinterfaces.ERR_IO,
				"copying block portion didn't copy entire portion, only copied ", copied, " of ", amounttoread)
		}

		dataoutcopypos += amounttoread
		currentblock++
		offsetinblock = 0 // start next block at beginning
		howmuchread += amounttoread
	}
	return nil
}

func (this *Byte_range_storage) Write_bytes(start_in_bytes uint64, length uint32, data []byte) tools.Ret {
	/* So the four pieces are:
	 * 1) piece fits within a block but is not the whole block (starts after beginning, finishes before end)
	 * 2) piece starts in the middle, goes to the end
	 * 3) piece covers entire block
	 * 4) piece start at the beginning of a block, ends in the middle of a different block.
	 * For 1, 2 and 4, we have to do a read to get the existing block to update it. */
	if len(data) < int(length) {
		return tools.ErrorWithCode(this.log, blockdevinterfaces.ERR_INVALID_BUFFER,
			"Invalid write request, only ", len(data), " bytes supplied to write ", length, " bytes.")
	}
	return this.update_range(start_in_bytes, length, data)
}

func (this *Byte_range_storage) Discard_bytes(start_in_bytes uint64, length uint32) tools.Ret {
	/* there's no deallocating anything in a block store, every block is always there, so discard
	   just means zeroes. partial blocks get read-update-written same as a write. */
	this.log.Debug("got discard request for start: ", start_in_bytes, " length: ", length)
	return this.update_range(start_in_bytes, length, nil)
}

func (this *Byte_range_storage) update_range(start_in_bytes uint64, length uint32, data []byte) tools.Ret {
	// data nil means write zeroes
	if length == 0 {
		return nil
	}
	var ret = this.check_range(start_in_bytes, length)
	if ret != nil {
		return ret
	}

	var block_size = this.Get_block_size()
	var currentblock uint64 = start_in_bytes / uint64(block_size)
	var offsetinblock uint32 = uint32(start_in_bytes % uint64(block_size))

	var writebuffer = make([]byte, block_size)
	var written uint32 = 0
	var readpos uint32 = 0 // where in the caller's buffer we're reading from
	for written < length {
		var remainingtowrite uint32 = length - written
		var absoluteendwritepositionrelativetothisblock uint64 = uint64(offsetinblock) + uint64(remainingtowrite)

		var prefetch bool = false
		if offsetinblock > 0 { // case 1 and 2
			prefetch = true
		}
		if absoluteendwritepositionrelativetothisblock < uint64(block_size) {
			prefetch = true // case 1 and 4
		}

		if prefetch {
			ret = this.store.Read_block(int64(currentblock), writebuffer)
			if ret != nil {
				return ret
			}
		} else {
			for k := range writebuffer {
				writebuffer[k] = 0
			}
		}

		/* for really large lengths (almost 2^32) start+remaining overflows a uint32, so do this in 64 bits. */
		var start uint32 = offsetinblock
		var end uint64 = absoluteendwritepositionrelativetothisblock
		if end > uint64(block_size) {
			end = uint64(block_size)
		}
		var amounttowrite uint32 = uint32(end) - start

		if data != nil {
			var copied = uint32(copy(writebuffer[start:end], data[readpos:readpos+amounttowrite]))
			if copied != amounttowrite {
				return tools.ErrorWithCode(this.log, blockdevinterfaces.ERR_IO, "we didn't copy all the data we wanted to. expected: ",
					amounttowrite, " copied: ", copied)
			}
		} else {
			for k := start; k < uint32(end); k++ {
				writebuffer[k] = 0
			}
		}
		readpos += amounttowrite

		ret = this.store.Write_block(int64(currentblock), writebuffer)
		if ret != nil {
			return ret
		}

		currentblock++
		offsetinblock = 0 // start next block at beginning
		written += amounttowrite
	}
	return nil
}
