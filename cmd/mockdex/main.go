// cmd/mockdex/main.go
//
// 本物のAPIを叩かずに動作確認するためのモックDexScreenerサーバーです。
//   go run ./cmd/mockdex &
//   MOONCAP_API_URL=http://localhost:18090/latest/dex go run ./cmd/mooncap -p TESTPAIR -t 100000 -i 2
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
)

// テスト用の時価総額シナリオ（波）を作る
// 8万から始まり目標の10万を超え、一度下抜けしてから再び超える波。
// アラームの発火 → 停止 → 再武装 → 再発火 が一通り確認できます
var mcapWave = []float64{
	80000, 85000, 92000, 97000,
	101000, // 🎯 [シナリオ1] ここで1回目のアラームが鳴るはず！
	108000, 104000,
	96000, // 下抜け。[s]で止めていればここで再武装する
	99000,
	103000, // 🎯 [シナリオ2] 再武装後の再到達で2回目が鳴るはず！
	110000, 90000,
}

type wave struct {
	mu   sync.Mutex
	tick int
}

func (w *wave) next() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := mcapWave[w.tick%len(mcapWave)]
	w.tick++
	return v
}

func main() {
	w := &wave{}

	// エンドポイントのルーティング（本物と同じパス構成）
	http.HandleFunc("/latest/dex/tokens/", func(rw http.ResponseWriter, r *http.Request) {
		servePair(rw, w.next())
	})
	http.HandleFunc("/latest/dex/pairs/", func(rw http.ResponseWriter, r *http.Request) {
		servePair(rw, w.next())
	})

	fmt.Println("[Mock] サーバー起動: モックDexScreenerがポート18090で待機中...")
	if err := http.ListenAndServe(":18090", nil); err != nil {
		log.Fatal("サーバー起動エラー:", err)
	}
}

func servePair(rw http.ResponseWriter, mcap float64) {
	resp := map[string]interface{}{
		"schemaVersion": "1.0.0",
		"pairs": []map[string]interface{}{
			{
				"chainId":     "solana",
				"dexId":       "raydium",
				"pairAddress": "TESTPAIR",
				"baseToken": map[string]string{
					"address": "TESTMINT",
					"name":    "Mock Moon",
					"symbol":  "MMOON",
				},
				"priceUsd":  fmt.Sprintf("%.8f", mcap/1_000_000_000),
				"fdv":       mcap * 1.1,
				"marketCap": mcap,
				"txns": map[string]map[string]int{
					"h24": {"buys": 120, "sells": 45},
				},
				"volume": map[string]float64{
					"h24": mcap * 0.4, "h6": mcap * 0.1, "h1": mcap * 0.02,
				},
				"priceChange": map[string]float64{
					"h1": 5.5, "h6": -2.0, "h24": 12.0,
				},
				"liquidity": map[string]float64{"usd": mcap * 0.3},
			},
		},
	}

	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(resp); err != nil {
		log.Printf("レスポンス書き込みエラー: %v", err)
	}
}
