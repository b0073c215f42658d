package metrics

// Label 指标维度
//
// 标签值应保持低基数：scope、mode、outcome 可以，请求 ID 不行。
type Label struct {
	Key   string
	Value string
}

// L 构造 Label
func L(key, value string) Label {
	return Label{Key: key, Value: value}
}
