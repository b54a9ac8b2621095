// SPDX-License-Identifier: MIT
/*
Package layout computes panel geometry for a module from nothing more than its
channel counts and parameter labels.

The panel is a row of 3HP columns: audio input jacks first, then parameter
cells (knob, CV jack and label), then output jacks. Coordinates are in panel
pixels on the rack grid (1HP = 15px, panel height 380px).
*/
package layout

import "fmt"

const (
	GridWidth  = 15  // pixels per HP
	GridHeight = 380 // panel height in pixels

	PortsPerColumn  = 6
	ParamsPerColumn = 4
	ColumnHP        = 3
	DefaultWidthHP  = 12 // panel width before a module is attached

	marginLeft   = GridWidth
	marginTop    = GridWidth
	marginBottom = 2 * GridWidth
	titleHeight  = 3 * GridWidth
	columnWidth  = ColumnHP * GridWidth

	// Height of the band holding jacks and knobs.
	activeHeight = GridHeight - marginBottom - titleHeight - marginTop

	portRowHeight  = activeHeight / PortsPerColumn
	paramRowHeight = activeHeight / ParamsPerColumn
)

// Point is a panel coordinate in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Jack is an input or output cell.
type Jack struct {
	Label  string `json:"label"`
	Column int    `json:"column"`
	Row    int    `json:"row"`
	Port   Point  `json:"port"`
	Text   Point  `json:"text"`
}

// Knob is a parameter cell: the knob, its CV jack and its label.
type Knob struct {
	Label  string `json:"label"`
	Column int    `json:"column"`
	Row    int    `json:"row"`
	Knob   Point  `json:"knob"`
	Port   Point  `json:"port"`
	Text   Point  `json:"text"`
}

// Panel is the computed layout.
type Panel struct {
	WidthHP int    `json:"width_hp"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Inputs  []Jack `json:"inputs"`
	Params  []Knob `json:"params"`
	Outputs []Jack `json:"outputs"`
}

// Columns returns how many columns n cells occupy when each column holds
// perColumn cells.
func Columns(n, perColumn int) int {
	if n <= 0 {
		return 0
	}
	return (n + perColumn - 1) / perColumn
}

// WidthHP is the panel width for the given counts, including one HP of
// margin on each side.
func WidthHP(numInputs, numOutputs, numParams int) int {
	return 2 + ColumnHP*(Columns(numInputs, PortsPerColumn)+
		Columns(numOutputs, PortsPerColumn)+
		Columns(numParams, ParamsPerColumn))
}

// Plan lays out numInputs input jacks, one knob per label and numOutputs
// output jacks.
func Plan(numInputs, numOutputs int, paramLabels []string) Panel {
	numParams := len(paramLabels)
	widthHP := WidthHP(numInputs, numOutputs, numParams)

	p := Panel{
		WidthHP: widthHP,
		Width:   widthHP * GridWidth,
		Height:  GridHeight,
		Inputs:  make([]Jack, numInputs),
		Params:  make([]Knob, numParams),
		Outputs: make([]Jack, numOutputs),
	}

	inputColumns := Columns(numInputs, PortsPerColumn)
	paramColumns := Columns(numParams, ParamsPerColumn)

	for i := range p.Inputs {
		p.Inputs[i] = jack(fmt.Sprintf("in %d", i+1), 0, i)
	}
	for i, label := range paramLabels {
		col := inputColumns + i/ParamsPerColumn
		row := i % ParamsPerColumn
		x := columnCenter(col)
		top := float64(marginTop + titleHeight + row*paramRowHeight)
		p.Params[i] = Knob{
			Label:  label,
			Column: col,
			Row:    row,
			Knob:   Point{X: x, Y: top + paramRowHeight*0.25},
			Port:   Point{X: x, Y: top + paramRowHeight*0.65},
			Text:   Point{X: x, Y: top + paramRowHeight*0.85},
		}
	}
	for i := range p.Outputs {
		p.Outputs[i] = jack(fmt.Sprintf("out %d", i+1), inputColumns+paramColumns, i)
	}

	return p
}

// jack places cell i of a jack group whose first column is firstColumn.
func jack(label string, firstColumn, i int) Jack {
	col := firstColumn + i/PortsPerColumn
	row := i % PortsPerColumn
	x := columnCenter(col)
	top := float64(marginTop + titleHeight + row*portRowHeight)
	return Jack{
		Label:  label,
		Column: col,
		Row:    row,
		Port:   Point{X: x, Y: top + portRowHeight*0.25},
		Text:   Point{X: x, Y: top + portRowHeight*0.55},
	}
}

func columnCenter(col int) float64 {
	return float64(marginLeft + col*columnWidth + columnWidth/2)
}
