package order

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// 订单号格式：ORD-<毫秒时间戳base36>-<4位随机>
// 示例：ORD-LQ3F8Z2K-7H2M
//
// 设计说明：
// 1. 时间戳部分保证大体有序，便于人工查询和统计
// 2. 随机后缀防止同一毫秒内重复；订单号列上有唯一索引，
//    万一碰撞由创建用例重新生成再试（不向上层暴露）
// 3. 不用UUID：32位十六进制对客服/用户太不友好
const orderNoPrefix = "ORD"

const base36Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderNo 生成订单号
// 并发安全：math/rand全局源在Go 1.20+是并发安全的
func GenerateOrderNo() string {
	timePart := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = base36Chars[rand.Intn(len(base36Chars))]
	}

	return fmt.Sprintf("%s-%s-%s", orderNoPrefix, timePart, suffix)
}

// ValidateOrderNo 校验订单号格式
func ValidateOrderNo(orderNo string) bool {
	parts := strings.Split(orderNo, "-")
	if len(parts) != 3 || parts[0] != orderNoPrefix {
		return false
	}
	if len(parts[1]) == 0 || len(parts[2]) != 4 {
		return false
	}
	for _, c := range parts[1] + parts[2] {
		if !strings.ContainsRune(base36Chars, c) {
			return false
		}
	}
	return true
}
