// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package diag

import (
	"fmt"

	"github.com/silica-lang/go-silica/pkg/hdl/ast"
	log "github.com/sirupsen/logrus"
)

// Error is a user-facing diagnostic produced against a netlist node.
type Error struct {
	// Position the diagnostic was raised at.
	FileLine *ast.FileLine
	// Message being reported.
	Msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.FileLine.String(), e.Msg)
}

// Reporter accumulates user diagnostics and named statistics whilst passes
// run.  User errors never abort a pass; callers inspect Errors afterwards.
type Reporter struct {
	errors []Error
	stats  map[string]uint
}

// NewReporter constructs an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{nil, make(map[string]uint)}
}

// Error reports a user-facing diagnostic at a given position.
func (r *Reporter) Error(fl *ast.FileLine, msg string) {
	log.Debugf("%%Error: %s: %s", fl.String(), msg)
	//
	r.errors = append(r.errors, Error{fl, msg})
}

// Errorf reports a user-facing diagnostic at a given position, with
// formatting.
func (r *Reporter) Errorf(fl *ast.FileLine, format string, args ...any) {
	r.Error(fl, fmt.Sprintf(format, args...))
}

// Errors returns every diagnostic reported so far.
func (r *Reporter) Errors() []Error {
	return r.errors
}

// AddStat adds to a named statistic counter.
func (r *Reporter) AddStat(name string, count uint) {
	r.stats[name] += count
}

// Stat returns the current value of a named statistic counter.
func (r *Reporter) Stat(name string) uint {
	return r.stats[name]
}

// Stats returns all statistic counters collected so far.
func (r *Reporter) Stats() map[string]uint {
	return r.stats
}

// FatalSrc aborts with an internal error at a given position.  These report
// violated invariants supplied by earlier passes, never expected user errors.
func FatalSrc(fl *ast.FileLine, msg string) {
	panic(fmt.Sprintf("internal: %s: %s", fl.String(), msg))
}
