package rng

import (
	"reflect"
	"testing"
)

func TestSeeded_Stream(t *testing.T) {
	s := NewSeeded()

	first := s.Stream("tree-sample", 42).Perm(20)
	second := s.Stream("tree-sample", 42).Perm(20)
	if !reflect.DeepEqual(first, second) {
		t.Error("same (name, seed) pair produced different streams")
	}

	otherSeed := s.Stream("tree-sample", 43).Perm(20)
	if reflect.DeepEqual(first, otherSeed) {
		t.Error("different seeds produced identical streams")
	}

	otherName := s.Stream("bootstrap", 42).Perm(20)
	if reflect.DeepEqual(first, otherName) {
		t.Error("different operation names produced identical streams")
	}
}
