// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/pkgloader/pkgloader/cmd/pkgloader"

func main() {
	cmd.Execute()
}
