// Package report turns an infected trajectory into the per-day comparison
// table: susceptible count, infected count, closed-form value, relative error
// and percent of the population infected.
//
// A relative error whose closed-form denominator is zero, near zero or not
// finite is flagged rather than printed as NaN or Inf. Rows carry
// ErrorDefined=false and the table shows "undefined" in the error column.
package report
