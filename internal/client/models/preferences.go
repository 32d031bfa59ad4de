// Package models holds the client-side data model: users, events and the
// dietary preference flags shared by both.
package models

import (
	"fmt"
	"strings"
)

// Preferences are the four dietary dimensions. On a User they are what the
// user is looking for; on an Event they are what the food satisfies.
type Preferences struct {
	IsVegan      bool `json:"is_vegan"`
	IsHalal      bool `json:"is_halal"`
	IsVegetarian bool `json:"is_vegetarian"`
	IsGlutenFree bool `json:"is_gluten_free"`
}

// Flag is a bit set over the dietary dimensions.
type Flag uint8

const (
	FlagVegan Flag = 1 << iota
	FlagHalal
	FlagVegetarian
	FlagGlutenFree

	FlagNone Flag = 0
	FlagAll       = FlagVegan | FlagHalal | FlagVegetarian | FlagGlutenFree
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagVegan, "vegan"},
	{FlagHalal, "halal"},
	{FlagVegetarian, "vegetarian"},
	{FlagGlutenFree, "gluten_free"},
}

// Flags returns every flag in display order.
func Flags() []Flag {
	out := make([]Flag, 0, len(flagNames))
	for _, f := range flagNames {
		out = append(out, f.flag)
	}
	return out
}

func (f Flag) Has(other Flag) bool {
	return other != FlagNone && f&other == other
}

func (f Flag) String() string {
	if f == FlagNone {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, ",")
}

// ParseFlag accepts a single dimension name: vegan, halal, vegetarian,
// gluten_free (also "gluten-free" and "glutenfree").
func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vegan":
		return FlagVegan, nil
	case "halal":
		return FlagHalal, nil
	case "vegetarian":
		return FlagVegetarian, nil
	case "gluten_free", "gluten-free", "glutenfree":
		return FlagGlutenFree, nil
	}
	return FlagNone, fmt.Errorf("unknown preference %q", s)
}

// Flags packs the booleans into a Flag set.
func (p Preferences) Flags() Flag {
	var f Flag
	if p.IsVegan {
		f |= FlagVegan
	}
	if p.IsHalal {
		f |= FlagHalal
	}
	if p.IsVegetarian {
		f |= FlagVegetarian
	}
	if p.IsGlutenFree {
		f |= FlagGlutenFree
	}
	return f
}

// WithFlags is the inverse of Flags.
func WithFlags(f Flag) Preferences {
	return Preferences{
		IsVegan:      f&FlagVegan != 0,
		IsHalal:      f&FlagHalal != 0,
		IsVegetarian: f&FlagVegetarian != 0,
		IsGlutenFree: f&FlagGlutenFree != 0,
	}
}

// Toggle returns p with every dimension in f inverted.
func (p Preferences) Toggle(f Flag) Preferences {
	return WithFlags(p.Flags() ^ (f & FlagAll))
}
