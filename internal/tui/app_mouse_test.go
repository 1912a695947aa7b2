package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/leaselad/leaselad/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < n; i++ {
			w := tabWidthForTest(i, active)
			x := pos + w/2
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1
		}
		assert.Equal(t, -1, a.tabAtX(pos+50))
	}
}

func tabWidthForTest(tabIdx, activeIdx int) int {
	names := []string{"Dashboard", "Vehicle", "History", "Settings"}

	w := len(names[tabIdx]) + 2 // horizontal padding
	if tabIdx != activeIdx {
		w += 2 // brackets around the shortcut letter
		if tabIdx == components.TabSettings {
			w++ // "[x]" is appended rather than wrapping a letter
		}
	}
	return w
}

func TestMouseClickSwitchesTab(t *testing.T) {
	a := App{loaded: true}
	x := tabWidthForTest(0, 0) + 1 + 2 // inside "Vehicle"

	m, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, components.TabVehicle, m.(App).activeTab)

	m, _ = m.(App).Update(tea.MouseMsg{X: 1, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, components.TabVehicle, m.(App).activeTab, "clicks below the tab bar are ignored")
}
