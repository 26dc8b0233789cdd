package core

import "testing"

func TestLastDayOfMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2024, 1, 31},
		{2024, 2, 29}, // leap year
		{2023, 2, 28},
		{2000, 2, 29}, // divisible by 400
		{1900, 2, 28}, // divisible by 100 but not 400
		{2024, 4, 30},
		{2024, 12, 31},
	}
	for _, tc := range cases {
		if got := LastDayOfMonth(tc.year, tc.month); got != tc.want {
			t.Errorf("LastDayOfMonth(%d, %d) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestClampDay(t *testing.T) {
	cases := []struct {
		year, month, day, want int
	}{
		{2024, 2, 31, 29},
		{2023, 2, 31, 28},
		{2024, 4, 31, 30},
		{2024, 1, 31, 31},
		{2024, 6, 15, 15},
	}
	for _, tc := range cases {
		if got := ClampDay(tc.year, tc.month, tc.day); got != tc.want {
			t.Errorf("ClampDay(%d, %d, %d) = %d, want %d", tc.year, tc.month, tc.day, got, tc.want)
		}
	}
}

func TestMonthStart(t *testing.T) {
	if got := MonthStart(NewDate(2024, 6, 23)); !got.Equal(NewDate(2024, 6, 1)) {
		t.Errorf("MonthStart() = %v, want 2024-06-01", got)
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		in   Date
		n    int
		want Date
	}{
		{"plain step", NewDate(2024, 3, 10), 1, NewDate(2024, 4, 10)},
		{"jan 31 clamps to feb, no carry-over", NewDate(2024, 1, 31), 1, NewDate(2024, 2, 29)},
		{"jan 31 non-leap", NewDate(2023, 1, 31), 1, NewDate(2023, 2, 28)},
		{"year wrap forward", NewDate(2024, 11, 15), 3, NewDate(2025, 2, 15)},
		{"year wrap backward", NewDate(2024, 1, 15), -2, NewDate(2023, 11, 15)},
		{"many months", NewDate(2024, 1, 1), 24, NewDate(2026, 1, 1)},
		{"zero", NewDate(2024, 5, 31), 0, NewDate(2024, 5, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddMonths(tt.in, tt.n); !got.Equal(tt.want) {
				t.Errorf("AddMonths(%v, %d) = %v, want %v", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
