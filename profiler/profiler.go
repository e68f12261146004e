// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package profiler records nested CPU spans for frame construction. A
// profiler hands out one top-level group per frame; staging operations
// nest child groups under it, and finished frames are drained with
// Collect. Everything tolerates nil receivers, so a nil profiler turns
// all of it into no-ops.
package profiler

import (
	"time"
)

// ProfilerGroup times a span of work. Callers that merely record spans
// depend on this interface rather than the concrete type, so alternative
// recorders can be swapped in.
type ProfilerGroup interface {
	Start(label string) ProfilerGroup
	End()
}

type Profiler struct {
	// started groups that haven't been collected yet
	groups []*Group
	// free list of profiler groups
	freeGroups []*Group
	// free list of profiler results
	results []ProfilerResult
}

func NewProfiler() *Profiler {
	return &Profiler{}
}

func NewNopProfiler() *Profiler {
	return nil
}

// Start opens a top-level group, usually one per frame. The tag tells
// frames apart in the collected results.
func (p *Profiler) Start(tag uint64) *Group {
	if p == nil {
		return nil
	}

	g := p.getGroup()
	// Don't use *g = Group{...} so that we reuse g.children.
	g.profiler = p
	g.Tag = tag
	g.cpuStart = time.Now()
	p.groups = append(p.groups, g)
	return g
}

func (p *Profiler) getGroup() *Group {
	if len(p.freeGroups) > 0 {
		g := p.freeGroups[len(p.freeGroups)-1]
		p.freeGroups = p.freeGroups[:len(p.freeGroups)-1]
		clear(g.children)
		g.children = g.children[:0]
		g.Tag = 0
		g.Label = ""
		g.cpuEnd = time.Time{}
		return g
	} else {
		return &Group{}
	}
}

type Group struct {
	Tag      uint64
	Label    string
	cpuStart time.Time
	cpuEnd   time.Time
	children []*Group
	profiler *Profiler
}

func (g *Group) End() {
	if g == nil {
		return
	}

	if !g.cpuEnd.IsZero() {
		panic("trying to end same group twice")
	}
	g.cpuEnd = time.Now()
}

// Start implements ProfilerGroup. Use Nest when holding the concrete
// type.
func (g *Group) Start(label string) ProfilerGroup {
	if g == nil {
		return (*Group)(nil)
	}
	return g.Nest(label)
}

func (g *Group) Nest(label string) *Group {
	if g == nil {
		return nil
	}
	cg := g.profiler.getGroup()
	// Don't use *cg = Group{...} so that we reuse cg.children.
	cg.profiler = g.profiler
	cg.Label = label
	cg.cpuStart = time.Now()
	g.children = append(g.children, cg)
	return cg
}

type ProfilerResult struct {
	Tag      uint64
	Label    string
	CPUStart time.Time
	CPUEnd   time.Time
	Children []ProfilerResult
}

func (p *Profiler) populateResult(g *Group, res *ProfilerResult) {
	// Don't use *res = ProfilerResult{...} so that we reuse res.Children.
	res.Tag = g.Tag
	res.Label = g.Label
	res.CPUStart = g.cpuStart
	res.CPUEnd = g.cpuEnd
	if cap(res.Children) >= len(g.children) {
		res.Children = res.Children[:len(g.children)]
	} else {
		res.Children = make([]ProfilerResult, len(g.children))
	}

	for ci, c := range g.children {
		p.populateResult(c, &res.Children[ci])
	}
}

// Collect returns the results of all ended top-level groups, in order of
// creation. The return value is only valid until the next call to
// Collect.
func (p *Profiler) Collect() []ProfilerResult {
	if p == nil {
		return nil
	}
	out := p.results[:0]

	var returnGroups func(gs ...*Group)
	returnGroups = func(gs ...*Group) {
		p.freeGroups = append(p.freeGroups, gs...)
		for _, g := range gs {
			returnGroups(g.children...)
		}
	}

	for i, g := range p.groups {
		if g.cpuEnd.IsZero() {
			// We stop at the first unfinished group so that we return
			// groups in order of creation.
			returnGroups(p.groups[:i]...)
			copy(p.groups, p.groups[i:])
			clear(p.groups[len(p.groups)-i:])
			p.groups = p.groups[:len(p.groups)-i]
			p.results = out[:0]
			return out
		}
		if cap(out) > len(out) {
			out = out[:len(out)+1]
		} else {
			out = append(out, ProfilerResult{})
		}
		p.populateResult(g, &out[len(out)-1])
	}
	// If we get here then all groups have been collected
	returnGroups(p.groups...)
	clear(p.groups)
	p.groups = p.groups[:0]
	p.results = out[:0]
	return out
}
