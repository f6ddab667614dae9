// Package fetcher performs the single paced HTTP GET every remote read in
// mangarchive goes through.
//
// Each call sleeps for the caller's minimum delay before issuing exactly one
// request and accepts only a 200 response. There is no retry: any other
// outcome is returned as a transport error and ends the run.
package fetcher
