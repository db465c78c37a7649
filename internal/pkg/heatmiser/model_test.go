package heatmiser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The 5/2 program blocks stay on the wire in 7-day mode, so the active
// comfort region shifts by 24 bytes and the active timer region by a further
// 32. These offsets are hardware-defined; pin them down exactly.
func TestProgramRegionOffsets(t *testing.T) {
	prt := layouts[ModelPRT]
	assert.Equal(t, 48, prt.comfortBase(2))
	assert.Equal(t, 72, prt.expectedLen(2))
	assert.Equal(t, 72, prt.comfortBase(7))
	assert.Equal(t, 156, prt.expectedLen(7))

	prthw := layouts[ModelPRTHW]
	assert.Equal(t, 51, prthw.comfortBase(2))
	assert.Equal(t, 75, prthw.timerBase(2))
	assert.Equal(t, 107, prthw.expectedLen(2))
	assert.Equal(t, 75, prthw.comfortBase(7))
	assert.Equal(t, 191, prthw.timerBase(7))
	assert.Equal(t, 303, prthw.expectedLen(7))

	tm1 := layouts[ModelTM1]
	assert.Equal(t, 51, tm1.timerBase(2))
	assert.Equal(t, 83, tm1.expectedLen(2))
	assert.Equal(t, 83, tm1.timerBase(7))
	assert.Equal(t, 195, tm1.expectedLen(7))
}

func TestNonProgrammableLayoutLength(t *testing.T) {
	assert.Equal(t, 48, layouts[ModelDT].expectedLen(2))
	assert.Equal(t, 48, layouts[ModelDTE].expectedLen(7))
}
