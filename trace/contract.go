package trace

// 号段分配相关的 Span 属性
const (
	AttrScope     = "idgen.scope"
	AttrBatchSize = "idgen.batch_size"
	AttrMode      = "idgen.mode"
	AttrAttempts  = "idgen.attempts"
	AttrBlockLow  = "idgen.block.low"
	AttrBlockHigh = "idgen.block.high"
)

// SpanNameFetchBlock 号段获取 Span 名称
const SpanNameFetchBlock = "idgen.fetch_block"
