// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package internal holds helpers shared by the μKern packages.
package internal

import (
	"iter"
)

// IterSeq2Concat concatenates key/value iterators, such as the defines of
// several devices, into a single iterator.
func IterSeq2Concat[T1 any, T2 any](seqs ...iter.Seq2[T1, T2]) iter.Seq2[T1, T2] {
	return func(yield func(T1, T2) bool) {
		for _, seq := range seqs {
			for val1, val2 := range seq {
				if !yield(val1, val2) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}
