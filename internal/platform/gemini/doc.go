// Package gemini implements the fuzzy answer judge on Google's Gemini API.
//
// The judge scores how close a learner's free-text answer is to the expected
// one. Calls are rate limited and run through a circuit breaker, so a
// degraded API slows or disables fuzzy grading without taking review
// sessions down: the assessor falls back to exact matching whenever the
// judge errors.
package gemini
