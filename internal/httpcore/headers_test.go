package httpcore

import "testing"

func TestByteRangeResolve(t *testing.T) {
	tests := []struct {
		name            string
		start, end      int64
		size            int64
		wantStart       int64
		wantEnd         int64
		wantSatisfiable bool
		wantMalformed   bool
	}{
		{name: "missing end clamps to size-1", start: 2, end: -1, size: 10, wantStart: 2, wantEnd: 9, wantSatisfiable: true},
		{name: "end equal to size clamps to size-1", start: 0, end: 10, size: 10, wantStart: 0, wantEnd: 9, wantSatisfiable: true},
		{name: "end within range is untouched", start: 2, end: 5, size: 10, wantStart: 2, wantEnd: 5, wantSatisfiable: true},
		{name: "start beyond end is malformed", start: 8, end: 3, size: 10, wantMalformed: true},
		{name: "end far beyond size is not satisfiable, not malformed", start: 1000, end: 2000, size: 500, wantMalformed: false, wantSatisfiable: false},
		{name: "start beyond size with missing end is malformed (end clamps below start first)", start: 600, end: -1, size: 500, wantMalformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := byteRange{start: tt.start, end: tt.end}
			start, end, satisfiable, malformed := r.resolve(tt.size)
			if malformed != tt.wantMalformed {
				t.Fatalf("malformed = %v, want %v", malformed, tt.wantMalformed)
			}
			if malformed {
				return
			}
			if satisfiable != tt.wantSatisfiable {
				t.Fatalf("satisfiable = %v, want %v", satisfiable, tt.wantSatisfiable)
			}
			if !satisfiable {
				return
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("resolve = (%d, %d), want (%d, %d)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
