// Package solve drives repeated Runge-Kutta steps from an initial
// condition to a target time.
//
//   - [Solver]: fixed-step integration; the final step is shortened to
//     land exactly on the target time.
//   - [EmbeddedSolver]: adaptive integration using an embedded error
//     estimator and the accept/reject step controller.
//   - [Session]: pull-based lazy sample production; nothing beyond the
//     current step attempt is computed until the caller asks.
//   - [Ensemble]: concurrent independent solves sharing one tableau.
//
// A fatal error surfaces together with the partial trajectory already
// produced; rejected attempts never advance the solver state.
package solve
