// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package main

import (
	"fmt"

	"github.com/facebookincubator/diva"
	"github.com/facebookincubator/diva/datagen"
)

func main() {
	// helper routines are available to let you size your filter
	// correctly ahead of time

	fmt.Printf("Example of analyzing size requirements:\n")
	conf := diva.Config{TargetBracket: 1024, FPR: 0.01}
	conf.ExplainIndent("  ")

	fmt.Printf("\nExample of building and querying a small diva filter:\n")
	keys := datagen.Smooth(3000, 1)

	filter := diva.Build(keys, diva.Config{
		TargetBracket: 1024,
		FPR:           0.01,
	})

	fmt.Printf("built filter over %d keys: %d samples, %d brackets\n",
		filter.Len(), filter.SampleCount(), filter.BracketCount())

	for _, k := range []uint64{keys[0], keys[len(keys)/2], keys[len(keys)-1]} {
		fmt.Printf("point query %d: %t\n", k, filter.PointQuery(k))
	}

	first, last := keys[0], keys[len(keys)-1]
	fmt.Printf("range query [%d, %d]: %t\n", first, last, filter.RangeQuery(first, last))
	fmt.Printf("range query [%d, %d]: %t\n", last+1, last+1000, filter.RangeQuery(last+1, last+1000))

	// Print a summary of the filter's layout and resolved configuration
	filter.Explain()
}
