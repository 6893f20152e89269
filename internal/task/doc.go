// Package task defines the task entity and its record encoding.
//
// A record is the key/value form of a task used in the backing file:
//
//	{
//	  "id": 1,
//	  "title": "Buy milk",
//	  "description": "2 liters",
//	  "completed": false
//	}
//
// Decoding is strict about the four keys: a missing key or a value of the
// wrong type yields a *MalformedRecordError. Unknown keys are ignored.
package task
