// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/afterhash/afterhash/cmd/afterhash"

func main() {
	cmd.Execute()
}
