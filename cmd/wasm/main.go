//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"math"
	"syscall/js"

	"github.com/Halleck45/OpenPronounce/pkg/pronounce/align"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/scoring"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorProcessing
)

// alignCurves warps two numeric curves onto their DTW path so the browser
// can overlay them.
// Returns: {error: number, data: {seq1: array, seq2: array} | string}
func alignCurves(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 2 arguments: seq1, seq2")
	}

	seq1, err := toFloats(args[0], "seq1")
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	seq2, err := toFloats(args[1], "seq2")
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}

	a, b, err := align.AlignCurves(seq1, seq2)
	if err != nil {
		return makeErrorResponse(ErrorProcessing, fmt.Sprintf("Failed to align curves: %v", err))
	}

	data := js.Global().Get("Object").New()
	data.Set("seq1", toJSArray(a))
	data.Set("seq2", toJSArray(b))
	return makeResponse(data)
}

// scoreBreakdown composes the default-weighted score from three distances.
// Returns: {error: number, data: {dtwDistance, phonemeDistance, wordDistance, finalScore} | string}
func scoreBreakdown(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 3 arguments: dtwDistance, phonemeDistance, wordDistance")
	}
	var d [3]float64
	for i := range d {
		if args[i].Type() != js.TypeNumber {
			return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("argument %d must be a number", i))
		}
		d[i] = args[i].Float()
	}

	b := scoring.DefaultComposer().Breakdown(d[0], d[1], d[2])

	data := js.Global().Get("Object").New()
	data.Set("dtwDistance", b.DTWDistance)
	data.Set("phonemeDistance", b.PhonemeDistance)
	data.Set("wordDistance", b.WordDistance)
	data.Set("finalScore", b.FinalScore)
	return makeResponse(data)
}

func toFloats(v js.Value, name string) ([]float64, error) {
	if v.Type() != js.TypeObject {
		return nil, fmt.Errorf("%s must be an Array or Float64Array", name)
	}
	n := v.Length()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		el := v.Index(i)
		if el.Type() != js.TypeNumber {
			return nil, fmt.Errorf("%s element %d is not a number", name, i)
		}
		f := el.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%s element %d is not finite", name, i)
		}
		out[i] = f
	}
	return out, nil
}

func toJSArray(xs []float64) js.Value {
	arr := js.Global().Get("Array").New(len(xs))
	for i, x := range xs {
		arr.SetIndex(i, x)
	}
	return arr
}

func makeResponse(data js.Value) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	if !console.IsUndefined() {
		console.Call("log", "OpenPronounce WASM module initializing...")
	}

	done := make(chan struct{})

	js.Global().Set("alignCurves", js.FuncOf(alignCurves))
	js.Global().Set("scoreBreakdown", js.FuncOf(scoreBreakdown))

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
	} else if !console.IsUndefined() {
		console.Call("error", "window object is undefined, wasmReady not dispatched")
	}

	if !console.IsUndefined() {
		console.Call("log", "OpenPronounce WASM module loaded: alignCurves, scoreBreakdown")
	}

	<-done
}
