// SPDX-License-Identifier: LGPL-2.1
// Copyright (C) 2021-2022 stu mark

package blockdevlib

/* st_blocks is always in 512 byte units no matter what the filesystem block size is. */
const STAT_BLOCK_UNIT_SIZE int64 = 512

// what block size and block count report before the store is initialized.
const BLOCK_STORE_UNINITIALIZED int64 = -1

const DEFAULT_FILL_PATTERN byte = 'a'

const backing_file_mode = 0644
