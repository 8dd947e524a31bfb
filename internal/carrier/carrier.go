// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package carrier implements the parse result carrier (spec.md §3,
// §5): a per-source handle that lazily builds and caches the green
// tree, red wrappers, AST, and analysis facts, each slot initialized
// at most once regardless of how many goroutines call its accessor
// concurrently. Distinct carriers never share state, so walks over
// different carriers may proceed in parallel; a single carrier's
// lazy-init slots are the only thing requiring synchronization.
package carrier

import (
	"sync"

	"github.com/mdhender/jomini/internal/ast"
	"github.com/mdhender/jomini/internal/diag"
	"github.com/mdhender/jomini/internal/facts"
	"github.com/mdhender/jomini/internal/greentree"
	"github.com/mdhender/jomini/internal/lexers"
	"github.com/mdhender/jomini/internal/parser"
)

const utf8BOM = "\xef\xbb\xbf"

// Carrier owns one source's worth of parse state. It is immutable
// after New returns except for its lazy cache slots.
type Carrier struct {
	src     []byte
	hadBOM  bool
	opts    parser.Options
	lexOpts lexers.Options

	source *lexers.Source
	p      *parser.Parser

	greenOnce sync.Once
	green     *greentree.Node

	redOnce sync.Once
	red     *greentree.RedNode

	astOnce sync.Once
	tree    *ast.SourceFile

	factsOnce sync.Once
	factsIdx  *facts.Index

	parsed bool // guards lazy parse-and-lex, run once on first demand
	runMu  sync.Mutex
}

// New builds a Carrier over src. A leading UTF-8 BOM is stripped and
// its presence recorded (HadBOM) rather than fed to the lexer, which
// has no BOM-handling rule of its own (spec.md §5's "Source input").
// Parsing itself is deferred until the first cache slot is requested.
func New(src []byte, opts parser.Options, lexOpts lexers.Options) *Carrier {
	hadBOM := false
	if len(src) >= len(utf8BOM) && string(src[:len(utf8BOM)]) == utf8BOM {
		src = src[len(utf8BOM):]
		hadBOM = true
	}
	return &Carrier{src: src, hadBOM: hadBOM, opts: opts, lexOpts: lexOpts}
}

// HadBOM reports whether the original source carried a UTF-8 BOM.
func (c *Carrier) HadBOM() bool { return c.hadBOM }

// Bytes returns the source bytes, BOM already stripped.
func (c *Carrier) Bytes() []byte { return c.src }

// ensureParsed runs the lexer and event parser exactly once, however
// many goroutines call into the carrier concurrently.
func (c *Carrier) ensureParsed() {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.parsed {
		return
	}
	c.source = lexers.NewSource(c.src, c.lexOpts)
	c.p = parser.New(c.source, c.opts)
	parser.ParseSourceFile(c.p)
	c.parsed = true
}

// Green returns the immutable green tree, building it (and running the
// lex/parse pass, if not already run) on first call.
func (c *Carrier) Green() *greentree.Node {
	c.ensureParsed()
	c.greenOnce.Do(func() {
		c.green = greentree.Build(c.p.Events(), c.source)
	})
	return c.green
}

// Red returns the red-wrapper root over the green tree.
func (c *Carrier) Red() *greentree.RedNode {
	c.redOnce.Do(func() {
		c.red = greentree.NewRoot(c.Green())
	})
	return c.red
}

// AST returns the lowered AST, built from the red tree on first call.
func (c *Carrier) AST() *ast.SourceFile {
	c.astOnce.Do(func() {
		c.tree = ast.FromRed(c.Red(), c.src)
	})
	return c.tree
}

// Facts returns the analysis-facts index over the AST, built on first
// call.
func (c *Carrier) Facts() *facts.Index {
	c.factsOnce.Do(func() {
		c.factsIdx = facts.Build(c.AST())
	})
	return c.factsIdx
}

// Diagnostics returns every diagnostic collected while producing this
// carrier's cached state so far: lexer diagnostics are always
// available once any cache slot has been touched (they're gathered
// during ensureParsed), parser diagnostics likewise. Calling
// Diagnostics before touching any accessor forces the lex/parse pass,
// since a carrier with no diagnostics gathered yet is indistinguishable
// from one that simply hasn't run.
func (c *Carrier) Diagnostics() []diag.Diagnostic {
	c.ensureParsed()
	bag := diag.NewBag()
	bag.AddAll(lexers.ToDiagnostics(c.source.Diagnostics()))
	bag.AddAll(c.p.Diagnostics())
	return bag.Items()
}
