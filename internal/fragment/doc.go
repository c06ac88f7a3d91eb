// Package fragment appends media fragment time ranges ("#t=start,duration")
// to video source URLs so players fetch only the needed span.
package fragment
