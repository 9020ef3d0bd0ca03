package util

import (
	"testing"
)

func TestQuickSort(t *testing.T) {

	arr := []int{4, 3, 2, 1, 10, 5555, -1, 20, 100, -100}
	arr = QuickSortG(arr, func(a, b int) int {
		if a < b {
			return -1
		} else if a > b {
			return 1
		} else {
			return 0
		}
	})

	for i := 0; i < len(arr); i++ {
		if i == 0 {
			continue
		}
		if arr[i] < arr[i-1] {
			t.Errorf("Error in sorting")
		}
	}
}

func TestRoundFloat(t *testing.T) {
	if RoundFloat(1.23456, 2) != 1.23 {
		t.Errorf("expected 1.23, got %f", RoundFloat(1.23456, 2))
	}
	if RoundFloat(2.5, 0) != 3.0 {
		t.Errorf("expected 3.0, got %f", RoundFloat(2.5, 0))
	}
}
