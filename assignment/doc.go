// Package assignment turns a free-text topic request into an ordered list
// of exam tasks for one student.
package assignment
