package interp

import (
	"uiuacore/internal/enginerr"
	"uiuacore/internal/ir"
	"uiuacore/internal/threads"
	"uiuacore/internal/value"
)

// cloneForThread builds the child interpreter a spawned thread runs in:
// shared assembly, backend, execution clock, interrupt hook, recursion
// limit, and memo table, but its own empty stacks, locals, reports, and
// test results, per spec.md §4.F step 4.
func (in *Interp) cloneForThread(childThread *threads.ThisThread) *Interp {
	return &Interp{
		Asm:            in.Asm,
		Backend:        in.Backend,
		Stacks:         value.NewStacks(),
		Locals:         make(map[int][]value.Value),
		RecursionLimit: in.RecursionLimit,
		ExecutionLimit: in.ExecutionLimit,
		ExecutionStart: in.ExecutionStart,
		InterruptHook:  in.InterruptHook,
		Thread:         childThread,
		OutputComments: make(map[int][][]value.Value),
		memo:           in.memo,
	}
}

// Spawn drains captureCount values from the stack into a new child
// interpreter's initial stack, runs fn.Node there (either on a
// dedicated goroutine or, when pool, submitted to the shared worker
// pool), and pushes the new child id. Matches spec.md §4.F's spawn.
func (in *Interp) Spawn(captureCount int, pool bool, fn ir.SigNode) error {
	if !in.Backend.AllowThreadSpawning() {
		return enginerr.NewRunError(in.CurrentSpan(), "thread spawning is not permitted by this backend")
	}
	captured, err := in.Stacks.PopN(captureCount)
	if err != nil {
		return err
	}

	id, err := in.Thread.Spawn(true, pool, func(childThread *threads.ThisThread) ([]value.Value, error) {
		child := in.cloneForThread(childThread)
		child.Stacks.PushAll(captured)
		if runErr := child.Exec(fn.Node); runErr != nil {
			return nil, runErr
		}
		out, popErr := child.Stacks.PopN(fn.Sig.Outputs)
		if popErr != nil {
			return nil, popErr
		}
		return out, nil
	})
	if err != nil {
		return enginerr.NewRunError(in.CurrentSpan(), err.Error())
	}
	in.Stacks.Push(value.FromNumber(float64(id)))
	return nil
}

func extractIDs(id value.Value) ([]int, []int) {
	num, ok := id.(*value.NumberArray)
	if !ok {
		return nil, nil
	}
	ids := make([]int, len(num.Data))
	for i, f := range num.Data {
		ids[i] = int(f)
	}
	return ids, num.Shape()
}

// Wait blocks for id's (scalar or array of) child threads, extending
// the main stack by a scalar child's result or pushing a nested array
// shaped like id for an array of ids, per spec.md §4.F's wait.
func (in *Interp) Wait(id value.Value) error {
	ids, shape := extractIDs(id)
	if ids == nil {
		return enginerr.NewRunError(in.CurrentSpan(), "wait expects a thread id or array of thread ids")
	}
	if len(shape) == 0 {
		stack, err := in.Thread.Wait(ids[0])
		if err != nil {
			return enginerr.NewRunError(in.CurrentSpan(), err.Error())
		}
		in.Stacks.PushAll(stack)
		return nil
	}
	rows := make([]value.Value, len(ids))
	for i, childID := range ids {
		stack, err := in.Thread.Wait(childID)
		if err != nil {
			return enginerr.NewRunError(in.CurrentSpan(), err.Error())
		}
		row, rowErr := value.FromRowValues(stack, value.Value.ElemSize)
		if rowErr != nil {
			return enginerr.NewRunError(in.CurrentSpan(), rowErr.Error())
		}
		rows[i] = row
	}
	for d := len(shape) - 1; d >= 1 && shape[d] > 0; d-- {
		grouped := make([]value.Value, 0, len(rows)/shape[d])
		for i := 0; i < len(rows); i += shape[d] {
			g, gErr := value.FromRowValues(rows[i:i+shape[d]], value.Value.ElemSize)
			if gErr != nil {
				return enginerr.NewRunError(in.CurrentSpan(), gErr.Error())
			}
			grouped = append(grouped, g)
		}
		rows = grouped
	}
	result, err := value.FromRowValues(rows, value.Value.ElemSize)
	if err != nil {
		return enginerr.NewRunError(in.CurrentSpan(), err.Error())
	}
	in.Stacks.Push(result)
	return nil
}

// Send enqueues v on the channel addressed by id (0 = parent) without
// blocking.
func (in *Interp) Send(id int, v value.Value) error {
	if err := in.Thread.Send(id, v); err != nil {
		return enginerr.NewRunError(in.CurrentSpan(), err.Error())
	}
	return nil
}

// Recv blocks for a value addressed to this thread from id. If the
// channel turns out to be closed, it attempts an implicit Wait so a
// child's panic surfaces as that child's own error rather than a
// generic "channel closed", per spec.md §4.F.
func (in *Interp) Recv(id value.Value) (value.Value, error) {
	ids, shape := extractIDs(id)
	if ids == nil || len(shape) != 0 {
		return nil, enginerr.NewRunError(in.CurrentSpan(), "recv expects a single thread id")
	}
	v, err := in.Thread.Recv(ids[0])
	if err != nil {
		if ids[0] != 0 {
			stack, waitErr := in.Thread.Wait(ids[0])
			if waitErr != nil {
				return nil, enginerr.NewRunError(in.CurrentSpan(), waitErr.Error())
			}
			if len(stack) > 0 {
				return stack[len(stack)-1], nil
			}
		}
		return nil, enginerr.NewRunError(in.CurrentSpan(), err.Error())
	}
	return v, nil
}

// TryRecv is Recv without blocking: it fails immediately on an empty
// open channel.
func (in *Interp) TryRecv(id value.Value) (value.Value, error) {
	ids, shape := extractIDs(id)
	if ids == nil || len(shape) != 0 {
		return nil, enginerr.NewRunError(in.CurrentSpan(), "try_recv expects a single thread id")
	}
	v, err := in.Thread.TryRecv(ids[0])
	if err != nil {
		return nil, enginerr.NewRunError(in.CurrentSpan(), err.Error())
	}
	return v, nil
}
