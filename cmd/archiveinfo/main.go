// archiveinfo is a standalone resource-table dump tool: it opens a BRGR
// archive and prints every resource's number, type, offset and size.
//
// Grounded on the teacher's tools/font2rgba.go pattern of a small,
// single-purpose CLI utility alongside the main program; term.IsTerminal
// decides whether to colorize the table the same way a real terminal
// tool gates ANSI output on whether stdout is actually a terminal
// (main.go's own boilerPlate prints raw ANSI escapes unconditionally,
// which is fine for a fixed banner but not for a table piped to a file).
package main

import (
	"flag"
	"fmt"
	"os"

	render "github.com/BodbDearg/phoenix-doom-sub001"
	"golang.org/x/term"
)

func main() {
	var archivePath string
	flag.StringVar(&archivePath, "archive", "", "path to a BRGR resource archive")
	flag.Parse()

	if archivePath == "" {
		fmt.Fprintln(os.Stderr, "usage: archiveinfo -archive path.brgr")
		os.Exit(1)
	}

	data, err := os.ReadFile(archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "archiveinfo: %v\n", err)
		os.Exit(1)
	}
	archive, err := render.OpenArchive(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "archiveinfo: %v\n", err)
		os.Exit(1)
	}

	colorize := term.IsTerminal(int(os.Stdout.Fd()))
	printTable(archive.Resources(), archive.EndResourceNum(), colorize)
}

const (
	ansiReset = "\x1b[0m"
	ansiDim   = "\x1b[2m"
	ansiCyan  = "\x1b[36m"
)

func printTable(resources []render.ResourceInfo, endResourceNum uint32, colorize bool) {
	header := fmt.Sprintf("%-10s %-10s %-10s %-10s", "NUMBER", "TYPE", "OFFSET", "SIZE")
	if colorize {
		fmt.Println(ansiCyan + header + ansiReset)
	} else {
		fmt.Println(header)
	}

	for i, r := range resources {
		line := fmt.Sprintf("%-10d %-10d %-10d %-10d", r.Number, r.Type, r.Offset, r.Size)
		if colorize && i%2 == 1 {
			fmt.Println(ansiDim + line + ansiReset)
		} else {
			fmt.Println(line)
		}
	}

	fmt.Printf("\n%d resources, end resource number %d\n", len(resources), endResourceNum)
}
