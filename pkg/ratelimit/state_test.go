package ratelimit

import (
	"testing"
)

func TestBudget_Spend(t *testing.T) {
	tests := []struct {
		name          string
		ceiling       int
		spends        int
		wantUsed      int
		wantExhausted bool
	}{
		{
			name:          "fresh window",
			ceiling:       100,
			spends:        1,
			wantUsed:      1,
			wantExhausted: false,
		},
		{
			name:          "one below ceiling",
			ceiling:       100,
			spends:        99,
			wantUsed:      99,
			wantExhausted: false,
		},
		{
			name:          "at ceiling",
			ceiling:       100,
			spends:        100,
			wantUsed:      100,
			wantExhausted: true,
		},
		{
			name:          "ceiling of one",
			ceiling:       1,
			spends:        1,
			wantUsed:      1,
			wantExhausted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Budget{Ceiling: tt.ceiling}
			var exhausted bool
			for i := 0; i < tt.spends; i++ {
				exhausted = b.Spend()
			}
			if b.Used != tt.wantUsed {
				t.Errorf("Used = %d, want %d", b.Used, tt.wantUsed)
			}
			if exhausted != tt.wantExhausted {
				t.Errorf("Spend() = %v, want %v", exhausted, tt.wantExhausted)
			}
		})
	}
}

func TestBudget_Reset(t *testing.T) {
	b := &Budget{Ceiling: 3}
	b.Spend()
	b.Spend()
	b.Spend()
	b.Reset()

	if b.Used != 0 {
		t.Errorf("Used after Reset() = %d, want 0", b.Used)
	}
	if b.Cooldowns != 1 {
		t.Errorf("Cooldowns = %d, want 1", b.Cooldowns)
	}
	if b.Total != 3 {
		t.Errorf("Total = %d, want 3", b.Total)
	}
}

func TestBudget_Remaining(t *testing.T) {
	tests := []struct {
		name string
		used int
		want int
	}{
		{name: "empty", used: 0, want: 100},
		{name: "half", used: 50, want: 50},
		{name: "full", used: 100, want: 0},
		{name: "over", used: 120, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Budget{Used: tt.used, Ceiling: 100}
			if got := b.Remaining(); got != tt.want {
				t.Errorf("Remaining() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Ceiling != DefaultCeiling {
		t.Errorf("Ceiling = %d, want %d", cfg.Ceiling, DefaultCeiling)
	}
	if cfg.Cooldown != DefaultCooldown {
		t.Errorf("Cooldown = %s, want %s", cfg.Cooldown, DefaultCooldown)
	}
	if cfg.PerSecond != 0 {
		t.Errorf("PerSecond = %v, want 0 (pacing disabled)", cfg.PerSecond)
	}
}
