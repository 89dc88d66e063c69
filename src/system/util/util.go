package util

import (
	"crypto/sha1"
	"encoding/hex"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/voodooEntity/gits/src/transport"
)

const identCharset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func CopyStringStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

// GenerateSignature builds a canonical sha1 signature over a transport
// entity tree. Properties and child branches are sorted first so two
// structurally equal trees always produce the same signature.
func GenerateSignature(entity transport.TransportEntity) string {
	hash := sha1.Sum([]byte(rCanonicalize(entity)))
	return hex.EncodeToString(hash[:])
}

func rCanonicalize(entity transport.TransportEntity) string {
	var sb strings.Builder
	sb.WriteString(entity.Type + "|" + entity.Value + "|" + entity.Context + "|")

	if 0 < len(entity.Properties) {
		keys := make([]string, 0, len(entity.Properties))
		for key := range entity.Properties {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			sb.WriteString(key + "=" + entity.Properties[key] + ",")
		}
	}

	if 0 < len(entity.ChildRelations) {
		children := make([]string, 0, len(entity.ChildRelations))
		for _, childRelation := range entity.ChildRelations {
			children = append(children, rCanonicalize(childRelation.Target))
		}
		sort.Strings(children)
		sb.WriteString("[" + strings.Join(children, ";") + "]")
	}

	return sb.String()
}

// RandomIdent returns a random alphanumeric identifier, used to name
// per-session gits instances.
func RandomIdent(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(identCharset[rand.Intn(len(identCharset))])
	}
	return sb.String()
}

// Itoa just forwards to strconv, it exists so query building code reads
// as Match("ID", "==", util.Itoa(id)) without importing strconv everywhere.
func Itoa(number int) string {
	return strconv.Itoa(number)
}
