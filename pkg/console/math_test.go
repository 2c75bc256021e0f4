package console

import "testing"

func Test_writeBitN(t *testing.T) {
	type args struct {
		v      uint64
		offset uint
		level  bool
	}
	tests := []struct {
		name string
		args args
		want uint64
	}{
		{
			name: "can set bit",
			args: args{
				v:      0b0000,
				offset: 2,
				level:  true,
			},
			want: 0b0100,
		},
		{
			name: "can clear bit",
			args: args{
				v:      0b1111,
				offset: 0,
				level:  false,
			},
			want: 0b1110,
		},
		{
			name: "retains value if bit already at level",
			args: args{
				v:      0b1010,
				offset: 3,
				level:  true,
			},
			want: 0b1010,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := writeBitN(tt.args.v, tt.args.offset, tt.args.level)
			if got != tt.want {
				t.Errorf("writeBitN() = %#b, want %#b", got, tt.want)
			}
			if readBitN(got, tt.args.offset) != tt.args.level {
				t.Errorf("readBitN() = %v, want %v", !tt.args.level, tt.args.level)
			}
		})
	}
}

func Test_decodeColor(t *testing.T) {
	r, g, b := decodeColor(0b100111)
	if r != 2 || g != 1 || b != 3 {
		t.Errorf("decodeColor() = %d %d %d, want 2 1 3", r, g, b)
	}
}
