package goemerchant

// resolveRouting merges a per-call routing override with the adapter default
// and returns the routing fields to put on the wire. Pure; no side effects.
//
// Precedence, preserved from the production adapter this was ported from:
//   - override.ProcessorID wins outright: only processor_id is emitted and
//     the instance routing is discarded for this call;
//   - otherwise the instance processor_id (if any) is emitted first, then
//     the instance MID triple (if any), with the override MID triple
//     overwriting the instance triple.
//
// The second branch can emit a record carrying both a stale processor_id
// from the instance and a fresh MID triple from the override. Exclusivity is
// deliberately NOT re-validated post-merge: changing this would silently
// alter wire payloads sent to a live financial gateway. See DESIGN.md.
func resolveRouting(instance, override Routing) ([]Field, error) {
	if err := override.Validate(); err != nil {
		return nil, err
	}

	var fields fieldList

	if override.ProcessorID != "" {
		fields.add("processor_id", override.ProcessorID)
		return fields.fields, nil
	}

	if instance.ProcessorID != "" {
		fields.add("processor_id", instance.ProcessorID)
	}

	triple := Routing{}
	if instance.MID != "" {
		triple = instance
	}
	if override.MID != "" {
		triple = override
	}
	if triple.MID != "" {
		fields.add("mid", triple.MID)
		fields.add("tid", triple.TID)
		fields.add("processor", triple.Processor)
	}

	return fields.fields, nil
}
