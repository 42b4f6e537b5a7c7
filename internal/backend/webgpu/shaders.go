// Embedded WGSL compute shaders for the primitives. Arithmetic kernels
// are f32; word-moving kernels (fill, transpose) operate on u32 words so
// every 4-byte element type can ride them.
package webgpu

// workgroupSize is the number of threads per 1-D workgroup.
const workgroupSize = 256

// fillShader writes one u32 pattern into every word.
const fillShader = `
@group(0) @binding(0) var<storage, read_write> dst: array<u32>;

struct Params {
    words: u32,
    pattern: u32,
}
@group(0) @binding(1) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i < params.words) {
        dst[i] = params.pattern;
    }
}
`

// fill64Shader writes a two-word pattern per element, for 8-byte types.
const fill64Shader = `
@group(0) @binding(0) var<storage, read_write> dst: array<u32>;

struct Params {
    count: u32,
    lo: u32,
    hi: u32,
}
@group(0) @binding(1) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i < params.count) {
        dst[2u * i] = params.lo;
        dst[2u * i + 1u] = params.hi;
    }
}
`

// addShader computes c = a + b elementwise.
const addShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> c: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i < params.size) {
        c[i] = a[i] + b[i];
    }
}
`

// subShader computes c = a - b elementwise.
const subShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> c: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i < params.size) {
        c[i] = a[i] - b[i];
    }
}
`

// mulShader computes c = a * b elementwise.
const mulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> c: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i < params.size) {
        c[i] = a[i] * b[i];
    }
}
`

// addScalarShader computes y = v + x.
const addScalarShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    size: u32,
    v: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i < params.size) {
        y[i] = params.v + x[i];
    }
}
`

// mulScalarShader computes y = v * x.
const mulScalarShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    size: u32,
    v: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i < params.size) {
        y[i] = params.v * x[i];
    }
}
`

// expShader computes y = exp(x).
const expShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i < params.size) {
        y[i] = exp(x[i]);
    }
}
`

// powShader computes y = pow(x, p).
const powShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    size: u32,
    p: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i < params.size) {
        y[i] = pow(x[i], params.p);
    }
}
`

// reluShader computes y = max(x, 0).
const reluShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i < params.size) {
        y[i] = max(x[i], 0.0);
    }
}
`

// sumShader folds the whole array in one workgroup: each thread
// accumulates a strided slice, then a shared-memory tree combines the
// partials. The stride layout makes the combination order unspecified.
const sumShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> out: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

var<workgroup> partials: array<f32, 256>;

@compute @workgroup_size(256)
fn main(@builtin(local_invocation_id) lid: vec3<u32>) {
    let t = lid.x;
    var acc: f32 = 0.0;
    var i = t;
    loop {
        if (i >= params.size) { break; }
        acc = acc + x[i];
        i = i + 256u;
    }
    partials[t] = acc;
    workgroupBarrier();

    var stride = 128u;
    loop {
        if (stride == 0u) { break; }
        if (t < stride) {
            partials[t] = partials[t] + partials[t + stride];
        }
        workgroupBarrier();
        stride = stride >> 1u;
    }
    if (t == 0u) {
        out[0] = partials[0];
    }
}
`

// maxShader is sumShader with max as the combiner.
const maxShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> out: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

var<workgroup> partials: array<f32, 256>;

@compute @workgroup_size(256)
fn main(@builtin(local_invocation_id) lid: vec3<u32>) {
    let t = lid.x;
    var acc = bitcast<f32>(0xff800000u); // -inf
    var i = t;
    loop {
        if (i >= params.size) { break; }
        acc = max(acc, x[i]);
        i = i + 256u;
    }
    partials[t] = acc;
    workgroupBarrier();

    var stride = 128u;
    loop {
        if (stride == 0u) { break; }
        if (t < stride) {
            partials[t] = max(partials[t], partials[t + stride]);
        }
        workgroupBarrier();
        stride = stride >> 1u;
    }
    if (t == 0u) {
        out[0] = partials[0];
    }
}
`

// argmaxShader tracks (value, index) pairs; ties resolve to the smaller
// index at every combine step, so the first occurrence wins overall.
const argmaxShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> out: array<u32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

var<workgroup> vals: array<f32, 256>;
var<workgroup> idxs: array<u32, 256>;

@compute @workgroup_size(256)
fn main(@builtin(local_invocation_id) lid: vec3<u32>) {
    let t = lid.x;
    var best = bitcast<f32>(0xff800000u); // -inf
    var bi = 0xffffffffu;
    var i = t;
    loop {
        if (i >= params.size) { break; }
        if (x[i] > best || bi == 0xffffffffu) {
            best = x[i];
            bi = i;
        }
        i = i + 256u;
    }
    vals[t] = best;
    idxs[t] = bi;
    workgroupBarrier();

    var stride = 128u;
    loop {
        if (stride == 0u) { break; }
        if (t < stride) {
            let vr = vals[t + stride];
            let ir = idxs[t + stride];
            if (ir != 0xffffffffu && (vr > vals[t] || (vr == vals[t] && ir < idxs[t]) || idxs[t] == 0xffffffffu)) {
                vals[t] = vr;
                idxs[t] = ir;
            }
        }
        workgroupBarrier();
        stride = stride >> 1u;
    }
    if (t == 0u) {
        out[0] = idxs[0];
    }
}
`

// topkInitShader copies keys into scratch and seeds the index payload;
// the power-of-two tail is padded with -inf so it sorts last.
const topkInitShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> keys: array<f32>;
@group(0) @binding(2) var<storage, read_write> idx: array<u32>;

struct Params {
    n: u32,
    total: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i >= params.total) {
        return;
    }
    if (i < params.n) {
        keys[i] = x[i];
        idx[i] = i;
    } else {
        keys[i] = bitcast<f32>(0xff800000u); // -inf
        idx[i] = 0x7fffffffu;
    }
}
`

// bitonicShader runs one compare-exchange pass of a bitonic sort over
// (key, index) pairs, ordering descending by key with ties broken by
// ascending index. The host issues the (k2, j) pass sequence.
const bitonicShader = `
@group(0) @binding(0) var<storage, read_write> keys: array<f32>;
@group(0) @binding(1) var<storage, read_write> idx: array<u32>;

struct Params {
    j: u32,
    k2: u32,
    total: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

// sortsAfter reports whether element i belongs after element l in the
// descending-by-key, ascending-by-index order.
fn sortsAfter(i: u32, l: u32) -> bool {
    if (keys[i] != keys[l]) {
        return keys[i] < keys[l];
    }
    return idx[i] > idx[l];
}

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    let ixj = i ^ params.j;
    if (i >= params.total || ixj <= i || ixj >= params.total) {
        return;
    }
    let ascendingBlock = (i & params.k2) == 0u;
    if (ascendingBlock == sortsAfter(i, ixj)) {
        let tk = keys[i];
        keys[i] = keys[ixj];
        keys[ixj] = tk;
        let ti = idx[i];
        idx[i] = idx[ixj];
        idx[ixj] = ti;
    }
}
`

// transposeShader writes each output element from its source index,
// recovered by divide/modulo index arithmetic over the permutation
// descriptor. Works on u32 words, so any 4-byte element type fits.
const transposeShader = `
@group(0) @binding(0) var<storage, read> src: array<u32>;
@group(0) @binding(1) var<storage, read_write> dst: array<u32>;

struct Params {
    size: u32,
    rank: u32,
    pad0: u32,
    pad1: u32,
    out_dims: vec4<u32>,
    src_strides: vec4<u32>,
    out_strides: vec4<u32>,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i >= params.size) {
        return;
    }
    var s = 0u;
    for (var j = 0u; j < params.rank; j = j + 1u) {
        let coord = (i / params.out_strides[j]) % params.out_dims[j];
        s = s + coord * params.src_strides[j];
    }
    dst[i] = src[s];
}
`

// gemmShader is a column-major GEMM with transpose flags, the accelerator
// BLAS convention; the Go bridge maps the row-major caller contract onto
// it by swapping operands, flags and m/n.
const gemmShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> c: array<f32>;

struct Params {
    ta: u32,
    tb: u32,
    m: u32,
    n: u32,
    k: u32,
    lda: u32,
    ldb: u32,
    ldc: u32,
    alpha: f32,
    beta: f32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let row = gid.x;
    let col = gid.y;
    if (row >= params.m || col >= params.n) {
        return;
    }
    var sum: f32 = 0.0;
    for (var l = 0u; l < params.k; l = l + 1u) {
        var av: f32;
        if (params.ta == 0u) {
            av = a[l * params.lda + row];
        } else {
            av = a[row * params.lda + l];
        }
        var bv: f32;
        if (params.tb == 0u) {
            bv = b[col * params.ldb + l];
        } else {
            bv = b[l * params.ldb + col];
        }
        sum = sum + av * bv;
    }
    let ci = col * params.ldc + row;
    c[ci] = params.alpha * sum + params.beta * c[ci];
}
`

// gemmBatchShader is gemmShader with per-batch base offsets dereferenced
// from device-resident tables; gid.z selects the batch.
const gemmBatchShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> c: array<f32>;
@group(0) @binding(3) var<storage, read> offs_a: array<u32>;
@group(0) @binding(4) var<storage, read> offs_b: array<u32>;
@group(0) @binding(5) var<storage, read> offs_c: array<u32>;

struct Params {
    ta: u32,
    tb: u32,
    m: u32,
    n: u32,
    k: u32,
    lda: u32,
    ldb: u32,
    ldc: u32,
    alpha: f32,
    beta: f32,
}
@group(0) @binding(6) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let row = gid.x;
    let col = gid.y;
    if (row >= params.m || col >= params.n) {
        return;
    }
    let oa = offs_a[gid.z];
    let ob = offs_b[gid.z];
    let oc = offs_c[gid.z];
    var sum: f32 = 0.0;
    for (var l = 0u; l < params.k; l = l + 1u) {
        var av: f32;
        if (params.ta == 0u) {
            av = a[oa + l * params.lda + row];
        } else {
            av = a[oa + row * params.lda + l];
        }
        var bv: f32;
        if (params.tb == 0u) {
            bv = b[ob + col * params.ldb + l];
        } else {
            bv = b[ob + l * params.ldb + col];
        }
        sum = sum + av * bv;
    }
    let ci = oc + col * params.ldc + row;
    c[ci] = params.alpha * sum + params.beta * c[ci];
}
`
