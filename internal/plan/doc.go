// Package plan loads inspection plans: YAML documents that declare record
// schemas, the arrays bound to one record of those schemas, and a sequence
// of shape operations to run against it.
//
// A plan looks like:
//
//	schemas:
//	  - name: Nested
//	    fields: [{name: x, element_rank: 1}]
//	  - name: Bundle
//	    fields: [{name: a, element_rank: 1}, {name: c, schema: Nested}]
//	record:
//	  schema: Bundle
//	  values:
//	    a: {shape: [4, 6, 3], dtype: float32, fill: arange}
//	    c: {values: {x: {shape: [6, 5]}}}
//	ops:
//	  - reshape: [2, 12]
//	  - index: "0, 1:"
package plan
