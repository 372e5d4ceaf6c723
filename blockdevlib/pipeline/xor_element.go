// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package pipeline

import (
	"github.com/nixomose/blockdevgo/blockdevlib/blockdevinterfaces"
	"github.com/nixomose/nixomosegotools/tools"
	"github.com/spf13/cobra"
)

const TXT_XOR_FLAG string = "xor"

/* xor every byte with a one byte key. it doesn't change the length of anything so it can sit
   in front of any block store. */

type Xor_element struct {
	log *tools.Nixomosetools_logger
	key byte
}

var _ blockdevinterfaces.Data_pipeline_element = &Xor_element{}

func New_xor_element(log *tools.Nixomosetools_logger, key byte) *Xor_element {
	var x Xor_element
	x.log = log
	x.key = key
	return &x
}

func (this *Xor_element) Get_key() byte {
	return this.key
}

func (this *Xor_element) Process_parameters(params *cobra.Command) tools.Ret {
	var key, err = params.Flags().GetUint8(TXT_XOR_FLAG)
	if err != nil {
		return tools.Error(this.log, "unable to get ", TXT_XOR_FLAG, " flag, err: ", err)
	}
	this.key = key
	return nil
}

func (this *Xor_element) Process_device(device blockdevinterfaces.Block_store) tools.Ret {
	this.log.Debug("xor pipeline element using key ", this.key, " on blocks of ", device.Get_block_size(), " bytes")
	return nil
}

func (this *Xor_element) xor(data []byte) {
	for i := range data {
		data[i] ^= this.key
	}
}

func (this *Xor_element) Pipe_in(data_in_out *[]byte) tools.Ret {
	this.xor(*data_in_out)
	return nil
}

func (this *Xor_element) Pipe_out(data_in_out *[]byte) tools.Ret {
	this.xor(*data_in_out)
	return nil
}
