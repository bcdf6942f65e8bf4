package node

import (
	"context"
	"reflect"
	"sync"

	"activeexpr.dev/go/internal/errs"
)

// Acquire lazily compiles-and-caches a child subgraph, returning a strong
// Ref. Short-circuit nodes (Conditional, Coalesce, AndAlso, OrElse) take an
// Acquire for every branch that may never need to exist (§4.5.6-§4.5.8,
// "short-circuit purity"): the unselected branch's getters must never run,
// which means its subgraph must never be constructed in the first place,
// not merely left unsubscribed. The compiler supplies a closure that
// recursively resolves the branch's expr.Node through the instance cache
// only when called.
type Acquire func() (Ref, error)

// branchSwitch is the shared "subscribe-the-new-before-unsubscribing-the-old"
// mechanism used by Conditional/Coalesce/AndAlso/OrElse (§5 "Ordering":
// branch switches always subscribe-then-unsubscribe so a same-thread
// renotification can never observe both or neither branch wired).
type branchSwitch struct {
	mu      sync.Mutex
	onChild func()

	haveBranch bool
	slot       string // which acquire this branch came from; opaque to callers
	ref        Ref
	unsub      func()
}

// to switches to the branch produced by acquire, identified by slot. If
// already on that slot, it is a no-op. Otherwise the new branch is acquired
// and subscribed before the old one is unsubscribed and released.
func (s *branchSwitch) to(slot string, acquire Acquire) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.haveBranch && s.slot == slot {
		return nil
	}
	newRef, err := acquire()
	if err != nil {
		return err
	}
	newUnsub := newRef.Node.Subscribe(s.onChild)

	oldRef, oldUnsub, hadOld := s.ref, s.unsub, s.haveBranch
	s.ref, s.unsub, s.slot, s.haveBranch = newRef, newUnsub, slot, true

	if hadOld {
		oldUnsub()
		oldRef.Release()
	}
	return nil
}

// clear releases the current branch, if any (used when the selector itself
// faults, per §4.5.6 "unsubscribe from both branches").
func (s *branchSwitch) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.haveBranch {
		return
	}
	s.unsub()
	s.ref.Release()
	s.haveBranch = false
	s.slot = ""
}

func (s *branchSwitch) current() (Ref, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ref, s.haveBranch
}

// --- Conditional (§4.5.6) ---

type conditionalNode struct {
	base

	test    Ref
	testSub func()
	acqTrue func() (Ref, error)
	acqFalse func() (Ref, error)
	branch  branchSwitch
}

// NewConditional builds the Conditional node described by §4.5.6.
func NewConditional(typ reflect.Type, test Ref, acqTrue, acqFalse func() (Ref, error)) Node {
	n := &conditionalNode{base: newBase(typ), test: test, acqTrue: acqTrue, acqFalse: acqFalse}
	n.branch.onChild = func() { n.refreshActive() }
	n.testSub = test.Node.Subscribe(func() { n.onTestChanged() })
	n.onTestChanged()
	return n
}

func (n *conditionalNode) onTestChanged() {
	if fault := n.test.Node.Fault(); fault != nil {
		n.branch.clear()
		n.setState(zeroOf(n.typ), fault)
		return
	}
	b, _ := n.test.Node.Value().(bool)
	slot, acquire := "false", n.acqFalse
	if b {
		slot, acquire = "true", n.acqTrue
	}
	if err := n.branch.to(slot, acquire); err != nil {
		n.setState(zeroOf(n.typ), err)
		return
	}
	n.refreshActive()
}

func (n *conditionalNode) refreshActive() {
	ref, ok := n.branch.current()
	if !ok {
		return
	}
	if fault := ref.Node.Fault(); fault != nil {
		n.setState(zeroOf(n.typ), fault)
		return
	}
	n.setState(ref.Node.Value(), nil)
}

func (n *conditionalNode) teardown(_ context.Context) {
	if n.testSub != nil {
		n.testSub()
	}
	n.branch.clear()
	n.test.Release()
}

// --- Coalesce (§4.5.7) ---

type coalesceNode struct {
	base

	left       Ref
	leftSub    func()
	acqRight   func() (Ref, error)
	conversion func(any) (any, error)
	branch     branchSwitch
}

// NewCoalesce builds the Coalesce node described by §4.5.7.
func NewCoalesce(typ reflect.Type, left Ref, acqRight func() (Ref, error), conversion func(any) (any, error)) Node {
	n := &coalesceNode{base: newBase(typ), left: left, acqRight: acqRight, conversion: conversion}
	n.branch.onChild = func() { n.refreshRight() }
	n.leftSub = left.Node.Subscribe(func() { n.onLeftChanged() })
	n.onLeftChanged()
	return n
}

func (n *coalesceNode) onLeftChanged() {
	if fault := n.left.Node.Fault(); fault != nil {
		n.branch.clear()
		n.setState(zeroOf(n.typ), fault)
		return
	}
	value := n.left.Node.Value()
	if !isNil(value) {
		n.branch.clear()
		if n.conversion != nil {
			converted, err := func() (out any, err error) {
				defer func() {
					if r := recover(); r != nil {
						err = errs.New(errs.ConversionError, "coalesce conversion panicked: %v", r)
					}
				}()
				out, err = n.conversion(value)
				if err != nil {
					err = errs.Wrap(errs.ConversionError, err, "coalesce conversion failed")
				}
				return out, err
			}()
			if err != nil {
				n.setState(zeroOf(n.typ), err)
				return
			}
			n.setState(converted, nil)
			return
		}
		n.setState(value, nil)
		return
	}
	if err := n.branch.to("right", n.acqRight); err != nil {
		n.setState(zeroOf(n.typ), err)
		return
	}
	n.refreshRight()
}

func (n *coalesceNode) refreshRight() {
	ref, ok := n.branch.current()
	if !ok {
		return
	}
	if fault := ref.Node.Fault(); fault != nil {
		n.setState(zeroOf(n.typ), fault)
		return
	}
	n.setState(ref.Node.Value(), nil)
}

func (n *coalesceNode) teardown(_ context.Context) {
	if n.leftSub != nil {
		n.leftSub()
	}
	n.branch.clear()
	n.left.Release()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// --- AndAlso / OrElse (§4.5.8) ---

type logicalNode struct {
	base

	left       Ref
	leftSub    func()
	acqRight   func() (Ref, error)
	continueOn bool // the left value that requires evaluating right to know the result
	branch     branchSwitch
}

// NewAndAlso builds the AndAlso node described by §4.5.8: left==false
// short-circuits to false without ever touching right; left==true defers to
// right.
func NewAndAlso(left Ref, acqRight func() (Ref, error)) Node {
	return newLogical(left, acqRight, true)
}

// NewOrElse builds the OrElse node described by §4.5.8: left==true
// short-circuits to true without ever touching right; left==false defers to
// right.
func NewOrElse(left Ref, acqRight func() (Ref, error)) Node {
	return newLogical(left, acqRight, false)
}

func newLogical(left Ref, acqRight func() (Ref, error), continueOn bool) Node {
	n := &logicalNode{base: newBase(reflect.TypeOf(false)), left: left, acqRight: acqRight, continueOn: continueOn}
	n.branch.onChild = func() { n.refreshRight() }
	n.leftSub = left.Node.Subscribe(func() { n.onLeftChanged() })
	n.onLeftChanged()
	return n
}

func (n *logicalNode) onLeftChanged() {
	if fault := n.left.Node.Fault(); fault != nil {
		n.branch.clear()
		n.setState(false, fault)
		return
	}
	b, _ := n.left.Node.Value().(bool)
	if b == n.continueOn {
		if err := n.branch.to("right", n.acqRight); err != nil {
			n.setState(false, err)
			return
		}
		n.refreshRight()
		return
	}
	n.branch.clear()
	n.setState(b, nil)
}

func (n *logicalNode) refreshRight() {
	ref, ok := n.branch.current()
	if !ok {
		return
	}
	if fault := ref.Node.Fault(); fault != nil {
		n.setState(false, fault)
		return
	}
	b, _ := ref.Node.Value().(bool)
	n.setState(b, nil)
}

func (n *logicalNode) teardown(_ context.Context) {
	if n.leftSub != nil {
		n.leftSub()
	}
	n.branch.clear()
	n.left.Release()
}
