// Package dispatcher resolves magic commands and coordinates their execution.
//
// A magic is a named command of a REPL, either a line magic that takes the
// rest of its line as arguments or a cell magic that applies to a whole cell.
// Sticky magics are cell magics that stay active across cells; they resolve
// exactly like cell magics.
//
// # Architecture
//
//  1. Registry: maps (kind, name) pairs to handlers. Registration derives a
//     handler's calling convention and documentation once.
//
//  2. Chain: runs the magics of one cell on a shared ExecutionContext. The
//     first invocation fault moves the chain to StateFailed, after which
//     every operation is a no-op.
//
// # Dispatch
//
// When a magic is dispatched:
//
//  1. Pre-dispatch hooks are called (can cancel the dispatch)
//  2. The handler is resolved; unknown magics yield the "no such magic" text
//  3. The argument text is tokenized and parsed against the handler's options
//  4. Positional arguments are bound to the handler's calling convention,
//     falling back once to the raw argument string on a shape mismatch
//  5. The handler is executed (with optional panic recovery)
//  6. Post-dispatch hooks are called
//  7. Metrics are recorded (if enabled)
//
// A failing handler, a parser usage error or a mismatch the fallback cannot
// absorb is an invocation fault: it is logged with its arguments, reported
// on the output followed by the magic's help, and terminates the chain.
//
// # Usage
//
//	d := dispatcher.NewWithDefaults()
//	d.SetEvaluator(ev)
//	d.SetOutput(out)
//	d.SetLogger(logger)
//
//	_ = d.Register(handler.New(handler.KindLine, "echo", echo).
//	    WithVariadic().
//	    WithOption(option.New("-u", "--upper").Default(false).Help("upper case")))
//
//	chain := d.Chain()
//	result := chain.Dispatch(ctx, handler.KindLine, "echo", option.Raw("hello -u"))
//
// # Help
//
//	d.Help(handler.KindLine, "echo", 0) // trimmed documentation
//	d.Help(handler.KindLine, "echo", 1) // source of the defining file
package dispatcher
