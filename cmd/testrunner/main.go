package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lawnchairsociety/deepcave/internal/testclient"
)

func main() {
	serverAddr := flag.String("addr", "localhost:4001", "Inspector TCP address (caveserver -tcp)")
	verbose := flag.Bool("v", false, "Verbose output - echo every command sent")
	flag.Parse()

	testclient.Verbose = *verbose

	fmt.Printf("Running inspector scenarios against %s\n", *serverAddr)
	fmt.Println("Make sure caveserver is running with -tcp!")
	fmt.Println()

	results := testclient.RunAllTests(*serverAddr)
	testclient.PrintResults(os.Stdout, results)

	// Exit with error code if any scenario failed
	for _, result := range results {
		if !result.Passed {
			os.Exit(1)
		}
	}
}
