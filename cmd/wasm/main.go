//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"syscall/js"

	"github.com/behrlich/postflop-solver/pkg/dataset"
	"github.com/behrlich/postflop-solver/pkg/notation"
	"github.com/behrlich/postflop-solver/pkg/override"
	"github.com/behrlich/postflop-solver/pkg/resolver"
)

// engine holds the loaded data; loads replace it wholesale
type engine struct {
	mu       sync.RWMutex
	table    *dataset.Table
	river    *override.Dataset
	multiway *override.Dataset
	resolver *resolver.Resolver
	equity   *resolver.EquityCache
}

var state = newEngine()

func newEngine() *engine {
	e := &engine{table: dataset.NewTable()}
	cache, err := resolver.NewEquityCache(512, 2000, 1, nil)
	if err != nil {
		panic(err)
	}
	e.equity = cache
	e.rebuild()
	return e
}

// rebuild must be called with mu held for writing
func (e *engine) rebuild() {
	var opts []resolver.Option
	if e.river != nil {
		opts = append(opts, resolver.WithRiverOverrides(e.river))
	}
	if e.multiway != nil {
		opts = append(opts, resolver.WithMultiwayOverrides(e.multiway))
	}
	e.resolver = resolver.New(e.table, opts...)
}

func main() {
	// Register JavaScript functions
	js.Global().Set("postflopSolver", makeSolverAPI())

	// Prevent the Go program from exiting
	select {}
}

// makeSolverAPI creates the JavaScript API object
func makeSolverAPI() js.Value {
	api := make(map[string]interface{})

	api["loadTable"] = js.FuncOf(loadTableWrapper)
	api["loadOverrides"] = js.FuncOf(loadOverridesWrapper)
	api["resolve"] = js.FuncOf(resolveWrapper)
	api["resolveSpot"] = js.FuncOf(resolveSpotWrapper)
	api["parseSpot"] = js.FuncOf(parseSpotWrapper)
	api["version"] = "1.0.0"

	return js.ValueOf(api)
}

// loadTableWrapper loads a strategy table
// Arguments: data (JSON string or Uint8Array holding JSON or a binary snapshot)
// Returns: Promise that resolves to {states, name, runId}
func loadTableWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorValue(errors.New("Usage: loadTable(data)"))
	}
	data := bytesArg(args[0])

	return promise(func() (interface{}, error) {
		table := dataset.NewTable()
		var err error
		if dataset.IsBinary(data) {
			err = table.UnmarshalBinary(data)
		} else {
			table, err = dataset.FromJSON(data)
		}
		if err != nil {
			return nil, fmt.Errorf("load table: %w", err)
		}

		state.mu.Lock()
		state.table = table
		state.rebuild()
		state.mu.Unlock()

		return map[string]interface{}{
			"states": table.Len(),
			"name":   table.Meta.Name,
			"runId":  table.Meta.RunID,
		}, nil
	})
}

// loadOverridesWrapper loads an override dataset
// Arguments: kind ("river" or "multiway"), data (JSON string or Uint8Array)
// Returns: {spots, skipped} or {error}
func loadOverridesWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorValue(errors.New("Usage: loadOverrides(kind, data)"))
	}

	var kind override.Kind
	switch args[0].String() {
	case "river":
		kind = override.River
	case "multiway":
		kind = override.Multiway
	default:
		return errorValue(fmt.Errorf("unknown override kind %q", args[0].String()))
	}

	d, err := override.Parse(bytesArg(args[1]), kind)
	if err != nil {
		return errorValue(err)
	}

	state.mu.Lock()
	if kind == override.River {
		state.river = d
	} else {
		state.multiway = d
	}
	state.rebuild()
	state.mu.Unlock()

	skipped := make([]interface{}, len(d.Skipped))
	for i, s := range d.Skipped {
		skipped[i] = s
	}
	return js.ValueOf(map[string]interface{}{
		"spots":   d.Len(),
		"skipped": skipped,
	})
}

// resolveWrapper answers a query given as a JSON string or object
// Returns: advice object or {error}
func resolveWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorValue(errors.New("Usage: resolve(query)"))
	}

	raw := args[0]
	if raw.Type() == js.TypeObject {
		raw = js.Global().Get("JSON").Call("stringify", raw)
	}
	var q resolver.Query
	if err := json.Unmarshal([]byte(raw.String()), &q); err != nil {
		return errorValue(fmt.Errorf("invalid query: %w", err))
	}

	state.mu.RLock()
	advice := state.resolver.Resolve(q)
	state.mu.RUnlock()

	return jsonValue(advice)
}

// resolveSpotWrapper answers a live spot in notation form. Hero equity comes
// from the E field or is estimated from the hero's hole cards.
// Returns: advice object (with the equity used) or {error}
func resolveSpotWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorValue(errors.New("Usage: resolveSpot(spotStr)"))
	}

	spot, err := notation.ParseSpot(args[0].String())
	if err != nil {
		return errorValue(fmt.Errorf("parse error: %w", err))
	}

	q := spot.Query()
	if spot.Equity == nil {
		hole, _ := spot.HeroHole()
		eq, err := state.equity.Equity(hole, spot.Board)
		if err != nil {
			return errorValue(err)
		}
		q.Equity = eq
	}

	state.mu.RLock()
	advice := state.resolver.Resolve(q)
	state.mu.RUnlock()

	return jsonValue(struct {
		resolver.Advice
		Equity float64 `json:"equity"`
	}{advice, q.Equity})
}

// parseSpotWrapper wraps the spot parser for JavaScript
func parseSpotWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorValue(errors.New("Usage: parseSpot(spotStr)"))
	}

	spot, err := notation.ParseSpot(args[0].String())
	if err != nil {
		return errorValue(err)
	}

	players := make([]interface{}, len(spot.Players))
	for i, p := range spot.Players {
		players[i] = map[string]interface{}{
			"position": string(p.Position),
			"stack":    p.Stack,
			"known":    p.Known(),
		}
	}

	return js.ValueOf(map[string]interface{}{
		"pot":     spot.Pot,
		"street":  spot.Street().String(),
		"hero":    spot.Hero,
		"toCall":  spot.ToCall,
		"players": players,
		"spot":    spot.String(),
	})
}

// promise runs fn in a goroutine and settles a JavaScript Promise with its result
func promise(fn func() (interface{}, error)) js.Value {
	handler := js.FuncOf(func(this js.Value, promiseArgs []js.Value) interface{} {
		resolve := promiseArgs[0]
		reject := promiseArgs[1]

		go func() {
			defer func() {
				if r := recover(); r != nil {
					reject.Invoke(js.ValueOf(fmt.Sprintf("solver panicked: %v", r)))
				}
			}()

			result, err := fn()
			if err != nil {
				reject.Invoke(js.ValueOf(err.Error()))
				return
			}
			resolve.Invoke(js.ValueOf(result))
		}()

		return nil
	})

	return js.Global().Get("Promise").New(handler)
}

// bytesArg accepts a string or a Uint8Array
func bytesArg(v js.Value) []byte {
	if v.Type() == js.TypeString {
		return []byte(v.String())
	}
	data := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(data, v)
	return data
}

// jsonValue hands a Go value to JavaScript through its JSON encoding
func jsonValue(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return errorValue(err)
	}
	return js.Global().Get("JSON").Call("parse", string(data))
}

func errorValue(err error) js.Value {
	return js.ValueOf(map[string]interface{}{
		"error": err.Error(),
	})
}
